package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

type PaymentMethod string

const (
	PaymentBkash        PaymentMethod = "bKash"
	PaymentNagad        PaymentMethod = "Nagad"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
)

// PaymentMethods lists the accepted values in display order.
var PaymentMethods = []PaymentMethod{PaymentBkash, PaymentNagad, PaymentBankTransfer}

// IsValidPaymentMethod reports whether m is one of the accepted methods.
func IsValidPaymentMethod(m PaymentMethod) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// PendingEnrollment is a learner's unconfirmed enrollment request. Rows are
// created once by the learner and mutated only by moderation (pending ->
// approved or pending -> rejected); they are never deleted.
type PendingEnrollment struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	UserID        string           `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_pending_user_token,priority:1"`
	CourseID      string           `json:"course_id" gorm:"not null;index;size:64"`
	Name          string           `json:"name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Phone         string           `json:"phone" gorm:"not null;size:32" validate:"required,min=1,max=32"`
	PaymentMethod PaymentMethod    `json:"payment_method" gorm:"not null;size:32" validate:"required"`
	TransactionID string           `json:"transaction_id" gorm:"not null;size:128" validate:"required,min=1,max=128"`
	CouponCode    *string          `json:"coupon_code" gorm:"size:64"`
	Status        EnrollmentStatus `json:"status" gorm:"not null;default:pending;index"`

	// Resolved at submission time so the admin console does not have to
	// re-derive prices while auditing payments.
	DiscountPercent int `json:"discount_percent" gorm:"not null;default:0"`
	FinalPrice      int `json:"final_price" gorm:"not null;default:0"`

	// Client-generated token, unique per user; the composite index makes a
	// double-submit safe without letting one user's token block another's.
	SubmissionToken string `json:"submission_token" gorm:"not null;size:64;uniqueIndex:idx_pending_user_token,priority:2"`

	DecidedBy *string    `json:"decided_by" gorm:"size:255"`
	DecidedAt *time.Time `json:"decided_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PendingEnrollment) TableName() string {
	return "pending_enrollments"
}

// Enrollment is a confirmed enrollment, created only by the approval
// transition. The (user_id, course_id) pair is unique at the store layer.
type Enrollment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_enrollments_user_course"`
	CourseID   string    `json:"course_id" gorm:"not null;size:64;uniqueIndex:idx_enrollments_user_course"`
	Completed  bool      `json:"completed" gorm:"not null;default:false"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
