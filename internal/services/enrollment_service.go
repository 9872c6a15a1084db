package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/catalog"
	"github.com/skillzlab/enrollment-service/internal/events"
	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

// ===== SERVICE IMPLEMENTATION =====

type enrollmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Submit records a payment claim as a pending enrollment. The submission
// token makes retries idempotent: the first row wins and later submissions
// with the same token get that row back unchanged.
func (s *enrollmentService) Submit(ctx context.Context, userID string, req EnrollmentSubmitRequest) (*EnrollmentSubmitResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course, err := catalog.Resolve(req.CourseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	// Retried submission: hand back what the first attempt stored.
	if existing, err := s.repo.PendingEnrollment().GetBySubmissionToken(ctx, userID, req.SubmissionToken); err == nil {
		return s.buildSubmitResponse(existing, course, true), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check submission token: %w", err)
	}

	enrolled, err := s.repo.Enrollment().ExistsByUserAndCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	discountPercent := 0
	var couponCode *string
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		code := models.NormalizeCouponCode(*req.CouponCode)
		coupon, err := s.repo.Coupon().GetActiveByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCouponNotFound
			}
			return nil, fmt.Errorf("failed to look up coupon: %w", err)
		}
		discountPercent = coupon.DiscountPercent
		couponCode = &coupon.Code
	}

	pending := &models.PendingEnrollment{
		UserID:          userID,
		CourseID:        course.ID,
		Name:            strings.TrimSpace(req.Name),
		Phone:           strings.TrimSpace(req.Phone),
		PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
		TransactionID:   strings.TrimSpace(req.TransactionID),
		CouponCode:      couponCode,
		Status:          models.EnrollmentPending,
		DiscountPercent: discountPercent,
		FinalPrice:      catalog.DiscountedPrice(course.Price, discountPercent),
		SubmissionToken: req.SubmissionToken,
	}

	if err := s.repo.PendingEnrollment().Create(ctx, pending); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the token race to a concurrent retry
			existing, lookupErr := s.repo.PendingEnrollment().GetBySubmissionToken(ctx, userID, req.SubmissionToken)
			if lookupErr != nil {
				return nil, fmt.Errorf("failed to resolve duplicate submission: %w", lookupErr)
			}
			return s.buildSubmitResponse(existing, course, true), nil
		}
		return nil, fmt.Errorf("failed to create pending enrollment: %w", err)
	}

	s.logger.Info("enrollment submitted",
		"pending_enrollment_id", pending.ID,
		"user_id", userID,
		"course_id", course.ID,
		"final_price", pending.FinalPrice)

	s.notifyAdmins(ctx, pending, course)
	s.publishSubmitted(ctx, pending)

	return s.buildSubmitResponse(pending, course, false), nil
}

func (s *enrollmentService) ListMine(ctx context.Context, userID string) (*MyEnrollmentsResponse, error) {
	enrollments, err := s.repo.Enrollment().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	status := models.EnrollmentPending
	pending, _, err := s.repo.PendingEnrollment().List(ctx, repositories.PendingEnrollmentFilters{
		UserID: &userID,
		Status: &status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending enrollments: %w", err)
	}

	return &MyEnrollmentsResponse{
		Enrollments: enrollments,
		Pending:     pending,
	}, nil
}

func (s *enrollmentService) buildSubmitResponse(pending *models.PendingEnrollment, course catalog.Course, retried bool) *EnrollmentSubmitResponse {
	return &EnrollmentSubmitResponse{
		PendingEnrollment: pending,
		CourseName:        course.Name,
		OriginalPrice:     course.Price,
		AlreadySubmitted:  retried,
	}
}

// notifyAdmins fans out an in-app notification to every admin profile.
// Best effort: a failed fan-out never rolls back the submission.
func (s *enrollmentService) notifyAdmins(ctx context.Context, pending *models.PendingEnrollment, course catalog.Course) {
	adminIDs, err := s.repo.Profile().ListAdminIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list admins for notification", "error", err)
		return
	}
	if len(adminIDs) == 0 {
		return
	}

	data, _ := json.Marshal(map[string]interface{}{
		"pending_enrollment_id": pending.ID,
		"course_id":             pending.CourseID,
	})

	notifications := make([]*models.Notification, 0, len(adminIDs))
	for _, adminID := range adminIDs {
		notifications = append(notifications, &models.Notification{
			UserID:  adminID,
			Title:   "New enrollment request",
			Message: fmt.Sprintf("%s requested enrollment in %s", pending.Name, course.Name),
			Data:    data,
		})
	}

	if err := s.repo.Notification().CreateBatch(ctx, notifications); err != nil {
		s.logger.Error("failed to notify admins", "pending_enrollment_id", pending.ID, "error", err)
	}
}

func (s *enrollmentService) publishSubmitted(ctx context.Context, pending *models.PendingEnrollment) {
	event := events.NewEvent(events.TopicEnrollmentSubmitted, events.EnrollmentSubmittedEvent{
		PendingEnrollmentID: pending.ID,
		UserID:              pending.UserID,
		CourseID:            pending.CourseID,
		CouponCode:          pending.CouponCode,
		FinalPrice:          pending.FinalPrice,
	})
	if err := s.publisher.Publish(ctx, events.TopicEnrollmentSubmitted, event); err != nil {
		s.logger.Error("failed to publish enrollment submitted event", "pending_enrollment_id", pending.ID, "error", err)
	}
}
