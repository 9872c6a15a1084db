package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/cache"
	"github.com/skillzlab/enrollment-service/internal/catalog"
	"github.com/skillzlab/enrollment-service/internal/events"
	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

// ===== SERVICE IMPLEMENTATION =====

type moderationService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	publisher  events.EventPublisher
	statsCache *cache.CacheHelper
}

func NewModerationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, statsCache *cache.CacheHelper) ModerationService {
	return &moderationService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		publisher:  publisher,
		statsCache: statsCache,
	}
}

func (s *moderationService) ListPending(ctx context.Context, page, size int, courseID *string) (*PendingListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	status := models.EnrollmentPending
	filters := repositories.PendingEnrollmentFilters{
		Status:   &status,
		CourseID: courseID,
		Limit:    size,
		Offset:   (page - 1) * size,
		SortBy:   "created_at",
	}

	enrollments, total, err := s.repo.PendingEnrollment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending enrollments: %w", err)
	}

	return &PendingListResponse{
		Enrollments: enrollments,
		Total:       total,
		Page:        page,
		Size:        size,
	}, nil
}

// Approve promotes a pending enrollment to a real one. The decision claim,
// the enrollment insert and the student notification commit or roll back
// together, so a crash can never leave an approved row without its
// enrollment.
func (s *moderationService) Approve(ctx context.Context, adminID string, id uint) (*models.Enrollment, error) {
	pending, err := s.repo.PendingEnrollment().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, fmt.Errorf("failed to get pending enrollment: %w", err)
	}

	var enrollment *models.Enrollment
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		claimed, err := txRepo.PendingEnrollment().ApplyDecision(ctx, id, repositories.EnrollmentDecision{
			Status:    models.EnrollmentApproved,
			DecidedBy: adminID,
			DecidedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to apply decision: %w", err)
		}
		if claimed == 0 {
			return ErrAlreadyDecided
		}

		enrolled, err := txRepo.Enrollment().ExistsByUserAndCourse(ctx, pending.UserID, pending.CourseID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if enrolled {
			return ErrAlreadyEnrolled
		}

		enrollment = &models.Enrollment{
			UserID:   pending.UserID,
			CourseID: pending.CourseID,
		}
		if err := txRepo.Enrollment().Create(ctx, enrollment); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyEnrolled
			}
			return fmt.Errorf("failed to create enrollment: %w", err)
		}

		return txRepo.Notification().Create(ctx, s.decisionNotification(pending, models.EnrollmentApproved, nil))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("enrollment approved",
		"pending_enrollment_id", id,
		"enrollment_id", enrollment.ID,
		"user_id", pending.UserID,
		"course_id", pending.CourseID,
		"admin_id", adminID)

	s.invalidateStats(ctx)
	s.publishDecision(ctx, events.TopicEnrollmentApproved, pending, adminID, "")

	return enrollment, nil
}

func (s *moderationService) Reject(ctx context.Context, adminID string, id uint, req RejectEnrollmentRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	pending, err := s.repo.PendingEnrollment().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("failed to get pending enrollment: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		claimed, err := txRepo.PendingEnrollment().ApplyDecision(ctx, id, repositories.EnrollmentDecision{
			Status:    models.EnrollmentRejected,
			DecidedBy: adminID,
			DecidedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to apply decision: %w", err)
		}
		if claimed == 0 {
			return ErrAlreadyDecided
		}

		return txRepo.Notification().Create(ctx, s.decisionNotification(pending, models.EnrollmentRejected, req.Reason))
	})
	if err != nil {
		return err
	}

	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	s.logger.Info("enrollment rejected",
		"pending_enrollment_id", id,
		"user_id", pending.UserID,
		"course_id", pending.CourseID,
		"admin_id", adminID)

	s.invalidateStats(ctx)
	s.publishDecision(ctx, events.TopicEnrollmentRejected, pending, adminID, reason)

	return nil
}

const statsCacheKey = "enrollment"

func (s *moderationService) Stats(ctx context.Context) (*repositories.EnrollmentStats, error) {
	var cached repositories.EnrollmentStats
	if err := s.statsCache.Get(ctx, statsCacheKey, &cached); err == nil {
		return &cached, nil
	}

	stats := &repositories.EnrollmentStats{}
	var err error

	if stats.PendingCount, err = s.repo.PendingEnrollment().CountByStatus(ctx, models.EnrollmentPending); err != nil {
		return nil, fmt.Errorf("failed to count pending enrollments: %w", err)
	}

	today := startOfToday()
	if stats.ApprovedToday, err = s.repo.PendingEnrollment().CountDecidedSince(ctx, models.EnrollmentApproved, today); err != nil {
		return nil, fmt.Errorf("failed to count approvals: %w", err)
	}
	if stats.RejectedToday, err = s.repo.PendingEnrollment().CountDecidedSince(ctx, models.EnrollmentRejected, today); err != nil {
		return nil, fmt.Errorf("failed to count rejections: %w", err)
	}

	if stats.TotalEnrollments, err = s.repo.Enrollment().CountAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	if stats.ActiveCoupons, err = s.repo.Coupon().CountActive(ctx); err != nil {
		return nil, fmt.Errorf("failed to count active coupons: %w", err)
	}

	_ = s.statsCache.Set(ctx, statsCacheKey, stats, cache.StatsCacheConfig.TTL)

	return stats, nil
}

func (s *moderationService) invalidateStats(ctx context.Context) {
	if err := s.statsCache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", "error", err)
	}
}

func (s *moderationService) decisionNotification(pending *models.PendingEnrollment, status models.EnrollmentStatus, reason *string) *models.Notification {
	courseName := pending.CourseID
	if course, err := catalog.Resolve(pending.CourseID); err == nil {
		courseName = course.Name
	}

	data, _ := json.Marshal(map[string]interface{}{
		"pending_enrollment_id": pending.ID,
		"course_id":             pending.CourseID,
		"status":                status,
	})

	if status == models.EnrollmentApproved {
		return &models.Notification{
			UserID:  pending.UserID,
			Title:   "Enrollment approved",
			Message: fmt.Sprintf("Your enrollment in %s has been approved. Welcome aboard!", courseName),
			Data:    data,
		}
	}

	message := fmt.Sprintf("Your enrollment in %s was not approved.", courseName)
	if reason != nil && *reason != "" {
		message = fmt.Sprintf("Your enrollment in %s was not approved: %s", courseName, *reason)
	}
	return &models.Notification{
		UserID:  pending.UserID,
		Title:   "Enrollment rejected",
		Message: message,
		Data:    data,
	}
}

func (s *moderationService) publishDecision(ctx context.Context, topic string, pending *models.PendingEnrollment, adminID, reason string) {
	event := events.NewEvent(topic, events.EnrollmentDecidedEvent{
		PendingEnrollmentID: pending.ID,
		UserID:              pending.UserID,
		CourseID:            pending.CourseID,
		DecidedBy:           adminID,
		Reason:              reason,
	})
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Error("failed to publish decision event", "topic", topic, "pending_enrollment_id", pending.ID, "error", err)
	}
}
