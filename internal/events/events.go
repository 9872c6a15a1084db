package events

import (
	"context"
	"time"
)

// Topics for workflow transitions. The Kafka publisher prepends the
// configured topic prefix.
const (
	TopicEnrollmentSubmitted = "enrollment.submitted"
	TopicEnrollmentApproved  = "enrollment.approved"
	TopicEnrollmentRejected  = "enrollment.rejected"
	TopicCouponCreated       = "coupon.created"
	TopicCouponDeactivated   = "coupon.deactivated"
	TopicBulkNotification    = "system.bulk_notification"
)

// Event is the envelope published for every workflow transition.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventPublisher publishes workflow events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type EnrollmentSubmittedEvent struct {
	PendingEnrollmentID uint    `json:"pending_enrollment_id"`
	UserID              string  `json:"user_id"`
	CourseID            string  `json:"course_id"`
	CouponCode          *string `json:"coupon_code,omitempty"`
	FinalPrice          int     `json:"final_price"`
}

type EnrollmentDecidedEvent struct {
	PendingEnrollmentID uint   `json:"pending_enrollment_id"`
	UserID              string `json:"user_id"`
	CourseID            string `json:"course_id"`
	DecidedBy           string `json:"decided_by"`
	Reason              string `json:"reason,omitempty"`
}

type CouponLifecycleEvent struct {
	CouponID        uint   `json:"coupon_id"`
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
	ActorID         string `json:"actor_id"`
}

type BulkNotificationEvent struct {
	UserIDs []string `json:"user_ids"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
}
