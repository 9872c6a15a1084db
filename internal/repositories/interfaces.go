package repositories

import (
	"context"
	"time"

	"github.com/skillzlab/enrollment-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type PendingEnrollmentFilters struct {
	Status    *models.EnrollmentStatus `json:"status"`
	CourseID  *string                  `json:"course_id"`
	UserID    *string                  `json:"user_id"`
	DateFrom  *time.Time               `json:"date_from"`
	DateTo    *time.Time               `json:"date_to"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "created_at", "updated_at", "status"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

type CouponFilters struct {
	IsActive  *bool  `json:"is_active"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

type NotificationFilters struct {
	IsRead *bool `json:"is_read"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type EnrollmentStats struct {
	PendingCount     int64 `json:"pending_count"`
	ApprovedToday    int64 `json:"approved_today"`
	RejectedToday    int64 `json:"rejected_today"`
	TotalEnrollments int64 `json:"total_enrollments"`
	ActiveCoupons    int64 `json:"active_coupons"`
}

// ===== DECISION INPUT =====

// EnrollmentDecision carries the moderator verdict applied to a pending row.
type EnrollmentDecision struct {
	Status    models.EnrollmentStatus
	DecidedBy string
	DecidedAt time.Time
}

// ===== DOMAIN REPOSITORY INTERFACES =====

type CouponRepository interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id uint) (*models.Coupon, error)

	// GetActiveByCode looks up a coupon by exact code with is_active=true.
	// Inactive and unknown codes are both reported as gorm.ErrRecordNotFound.
	GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error)

	List(ctx context.Context, filters CouponFilters) ([]*models.Coupon, int64, error)
	Deactivate(ctx context.Context, id uint) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountActive(ctx context.Context) (int64, error)
}

type PendingEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.PendingEnrollment) error
	GetByID(ctx context.Context, id uint) (*models.PendingEnrollment, error)
	GetBySubmissionToken(ctx context.Context, userID, token string) (*models.PendingEnrollment, error)
	List(ctx context.Context, filters PendingEnrollmentFilters) ([]*models.PendingEnrollment, int64, error)

	// ApplyDecision updates status and decision metadata on a pending row.
	// Only rows still in pending status are affected; the returned count
	// tells the caller whether the row was actually claimed.
	ApplyDecision(ctx context.Context, id uint, decision EnrollmentDecision) (int64, error)

	CountByStatus(ctx context.Context, status models.EnrollmentStatus) (int64, error)
	CountDecidedSince(ctx context.Context, status models.EnrollmentStatus, since time.Time) (int64, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	ExistsByUserAndCourse(ctx context.Context, userID, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error)
	CountAll(ctx context.Context) (int64, error)
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Update(ctx context.Context, profile *models.Profile) error
	ListAdminIDs(ctx context.Context) ([]string, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	ListByUser(ctx context.Context, userID string, filters NotificationFilters) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, id uint) error
	MarkAllRead(ctx context.Context, userID string) error
}
