package services

import (
	"context"
	"time"

	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type EnrollmentSubmitRequest = validator.EnrollmentSubmitRequest
type CouponValidateRequest = validator.CouponValidateRequest
type CouponCreateRequest = validator.CouponCreateRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type RejectEnrollmentRequest = validator.RejectEnrollmentRequest

type CouponResponse struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

type CouponListResponse struct {
	Coupons []*models.Coupon `json:"coupons"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type EnrollmentSubmitResponse struct {
	*models.PendingEnrollment
	CourseName    string `json:"course_name"`
	OriginalPrice int    `json:"original_price"`

	// AlreadySubmitted is set when the submission token matched a prior
	// submission and the stored row was returned instead of a new one.
	AlreadySubmitted bool `json:"already_submitted"`
}

type MyEnrollmentsResponse struct {
	Enrollments []*models.Enrollment        `json:"enrollments"`
	Pending     []*models.PendingEnrollment `json:"pending"`
}

type PendingListResponse struct {
	Enrollments []*models.PendingEnrollment `json:"enrollments"`
	Total       int64                       `json:"total"`
	Page        int                         `json:"page"`
	Size        int                         `json:"size"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
	Page          int                    `json:"page"`
	Size          int                    `json:"size"`
}

// ===== SERVICE INTERFACES =====

type CouponService interface {
	// Validate resolves an active coupon for a checkout preview. Unknown
	// and inactive codes both come back as ErrCouponNotFound.
	Validate(ctx context.Context, req CouponValidateRequest) (*CouponResponse, error)

	Create(ctx context.Context, actorID string, req CouponCreateRequest) (*models.Coupon, error)
	Deactivate(ctx context.Context, actorID string, id uint) error
	List(ctx context.Context, page, size int, isActive *bool) (*CouponListResponse, error)
}

type EnrollmentService interface {
	Submit(ctx context.Context, userID string, req EnrollmentSubmitRequest) (*EnrollmentSubmitResponse, error)
	ListMine(ctx context.Context, userID string) (*MyEnrollmentsResponse, error)
}

type ModerationService interface {
	ListPending(ctx context.Context, page, size int, courseID *string) (*PendingListResponse, error)
	Approve(ctx context.Context, adminID string, id uint) (*models.Enrollment, error)
	Reject(ctx context.Context, adminID string, id uint, req RejectEnrollmentRequest) error
	Stats(ctx context.Context) (*repositories.EnrollmentStats, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, req ProfileUpdateRequest) (*models.Profile, error)

	// EnsureExists provisions the profile row on first authenticated
	// request so role checks always have something to read.
	EnsureExists(ctx context.Context, userID, name string) error
}

type NotificationService interface {
	List(ctx context.Context, userID string, page, size int, unreadOnly bool) (*NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, id uint) error
	MarkAllRead(ctx context.Context, userID string) error
}

type ExportService interface {
	// ExportPendingEnrollments renders the pending queue as an XLSX
	// workbook and returns the file bytes with a suggested filename.
	ExportPendingEnrollments(ctx context.Context, status *models.EnrollmentStatus) ([]byte, string, error)
}

// ServiceManager wires all services together with shared dependencies
type ServiceManager interface {
	Coupon() CouponService
	Enrollment() EnrollmentService
	Moderation() ModerationService
	Profile() ProfileService
	Notification() NotificationService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ===== SHARED HELPERS =====

// startOfToday returns midnight UTC for "decided today" counters.
func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
