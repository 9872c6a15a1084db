package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/events"
	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

// ===== SERVICE IMPLEMENTATION =====

type couponService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewCouponService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CouponService {
	return &couponService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *couponService) Validate(ctx context.Context, req CouponValidateRequest) (*CouponResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	code := models.NormalizeCouponCode(req.Code)

	coupon, err := s.repo.Coupon().GetActiveByCode(ctx, code)
	if err != nil {
		// unknown codes, inactive codes and store failures all surface the
		// same way so the validate endpoint leaks nothing about the store
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("coupon lookup failed", "code", code, "error", err)
		}
		return nil, ErrCouponNotFound
	}

	return &CouponResponse{
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
	}, nil
}

func (s *couponService) Create(ctx context.Context, actorID string, req CouponCreateRequest) (*models.Coupon, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	code := models.NormalizeCouponCode(req.Code)

	exists, err := s.repo.Coupon().ExistsByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}
	if exists {
		return nil, ErrCouponExists
	}

	coupon := &models.Coupon{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		IsActive:        true,
	}

	if err := s.repo.Coupon().Create(ctx, coupon); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCouponExists
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info("coupon created", "coupon_id", coupon.ID, "code", coupon.Code, "actor_id", actorID)

	s.publishLifecycle(ctx, events.TopicCouponCreated, coupon, actorID)

	return coupon, nil
}

func (s *couponService) Deactivate(ctx context.Context, actorID string, id uint) error {
	coupon, err := s.repo.Coupon().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("failed to get coupon: %w", err)
	}

	if err := s.repo.Coupon().Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", err)
	}

	s.logger.Info("coupon deactivated", "coupon_id", id, "code", coupon.Code, "actor_id", actorID)

	s.publishLifecycle(ctx, events.TopicCouponDeactivated, coupon, actorID)

	return nil
}

func (s *couponService) List(ctx context.Context, page, size int, isActive *bool) (*CouponListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	filters := repositories.CouponFilters{
		IsActive: isActive,
		Limit:    size,
		Offset:   (page - 1) * size,
	}

	coupons, total, err := s.repo.Coupon().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	return &CouponListResponse{
		Coupons: coupons,
		Total:   total,
		Page:    page,
		Size:    size,
	}, nil
}

// publishLifecycle emits a coupon event; delivery failures are logged and
// never fail the write that already happened.
func (s *couponService) publishLifecycle(ctx context.Context, topic string, coupon *models.Coupon, actorID string) {
	event := events.NewEvent(topic, events.CouponLifecycleEvent{
		CouponID:        coupon.ID,
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
		ActorID:         actorID,
	})
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Error("failed to publish coupon event", "topic", topic, "coupon_id", coupon.ID, "error", err)
	}
}
