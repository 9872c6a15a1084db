package services

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes with errors.Is.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")

	ErrCourseNotFound       = errors.New("course not found")
	ErrCouponNotFound       = errors.New("coupon not found or inactive")
	ErrCouponExists         = errors.New("coupon code already exists")
	ErrEnrollmentNotFound   = errors.New("enrollment not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrAlreadyEnrolled = errors.New("user already enrolled in course")
	ErrAlreadyDecided  = errors.New("enrollment has already been decided")
)
