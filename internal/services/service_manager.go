package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/skillzlab/enrollment-service/internal/cache"
	"github.com/skillzlab/enrollment-service/internal/events"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db          *gorm.DB
	repo        repositories.Repository
	logger      *slog.Logger
	validator   *validator.Validator
	publisher   events.EventPublisher
	redisClient *redis.Client

	// Service instances
	couponService       CouponService
	enrollmentService   EnrollmentService
	moderationService   ModerationService
	profileService      ProfileService
	notificationService NotificationService
	exportService       ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, redisClient *redis.Client) ServiceManager {
	return &serviceManager{
		db:          db,
		repo:        repo,
		logger:      logger,
		validator:   validator,
		publisher:   publisher,
		redisClient: redisClient,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	statsCache := cache.NewCacheHelper(sm.redisClient, cache.StatsCacheConfig.Prefix)

	sm.couponService = NewCouponService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.moderationService = NewModerationService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher, statsCache)
	sm.profileService = NewProfileService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.notificationService = NewNotificationService(sm.repo, sm.db, sm.logger)
	sm.exportService = NewExportService(sm.repo, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Coupon() CouponService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.couponService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.enrollmentService
}

func (sm *serviceManager) Moderation() ModerationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.moderationService
}

func (sm *serviceManager) Profile() ProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.profileService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.notificationService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
