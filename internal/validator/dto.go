package validator

// EnrollmentSubmitRequest is the payload a learner sends to open an
// enrollment request. SubmissionToken is generated client-side per attempt
// and makes a double-click re-submit safe.
type EnrollmentSubmitRequest struct {
	CourseID        string  `json:"course_id" validate:"required,max=64"`
	Name            string  `json:"name" validate:"required,min=1,max=100"`
	Phone           string  `json:"phone" validate:"required,min=1,max=32"`
	PaymentMethod   string  `json:"payment_method" validate:"required,payment_method"`
	TransactionID   string  `json:"transaction_id" validate:"required,min=1,max=128"`
	CouponCode      *string `json:"coupon_code" validate:"omitempty,max=64"`
	SubmissionToken string  `json:"submission_token" validate:"required,max=64"`
}

// CouponValidateRequest checks a user-entered code against active coupons.
type CouponValidateRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// CouponCreateRequest creates a new active coupon. The code is normalized
// (trimmed, uppercased) before the struct is validated or stored.
type CouponCreateRequest struct {
	Code            string `json:"code" validate:"required,max=64,coupon_code"`
	DiscountPercent int    `json:"discount_percent" validate:"required,min=1,max=100"`
}

// ProfileUpdateRequest upserts the caller's own profile row. Role is not
// settable through this request.
type ProfileUpdateRequest struct {
	Name        string            `json:"name" validate:"omitempty,max=100"`
	Phone       string            `json:"phone" validate:"omitempty,max=32"`
	AvatarURL   *string           `json:"avatar_url" validate:"omitempty,max=500,url"`
	SocialLinks map[string]string `json:"social_links" validate:"omitempty,dive,keys,oneof=twitter linkedin facebook,endkeys,max=500"`
}

// RejectEnrollmentRequest optionally carries a reason shown to the learner.
type RejectEnrollmentRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}
