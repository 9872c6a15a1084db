package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/repositories"
)

// ===== SERVICE IMPLEMENTATION =====

type notificationService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewNotificationService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *notificationService) List(ctx context.Context, userID string, page, size int, unreadOnly bool) (*NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	filters := repositories.NotificationFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if unreadOnly {
		unread := false
		filters.IsRead = &unread
	}

	notifications, total, err := s.repo.Notification().ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unreadCount, err := s.repo.Notification().CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		Size:          size,
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.Notification().CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID string, id uint) error {
	// scoped by user so nobody can mark someone else's notification
	if err := s.repo.Notification().MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.Notification().MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
