package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

// ===== SERVICE IMPLEMENTATION =====

type profileService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProfileService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ProfileService {
	return &profileService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.repo.Profile().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, userID string, req ProfileUpdateRequest) (*models.Profile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.repo.Profile().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if req.Name != "" {
		profile.Name = req.Name
	}
	if req.Phone != "" {
		profile.Phone = req.Phone
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	if req.SocialLinks != nil {
		links, err := json.Marshal(req.SocialLinks)
		if err != nil {
			return nil, fmt.Errorf("failed to encode social links: %w", err)
		}
		profile.SocialLinks = links
	}

	if err := s.repo.Profile().Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)

	return profile, nil
}

// EnsureExists creates the profile row with the student role on first
// sight of a user. Existing rows are left untouched so admin role
// assignments survive re-logins.
func (s *profileService) EnsureExists(ctx context.Context, userID, name string) error {
	_, err := s.repo.Profile().GetByID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check profile: %w", err)
	}

	profile := &models.Profile{
		ID:   userID,
		Name: name,
		Role: models.RoleStudent,
	}
	if err := s.repo.Profile().Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to provision profile: %w", err)
	}

	s.logger.Info("profile provisioned", "user_id", userID)
	return nil
}
