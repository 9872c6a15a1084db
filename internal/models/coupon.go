package models

import (
	"strings"
	"time"
)

// Coupon is a named percentage discount token. Coupons are never physically
// deleted; deactivation flips IsActive and the row stays for audit.
type Coupon struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Code            string    `json:"code" gorm:"uniqueIndex;not null;size:64" validate:"required,min=1,max=64"`
	DiscountPercent int       `json:"discount_percent" gorm:"not null" validate:"required,min=1,max=100"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// NormalizeCouponCode applies the canonical form used on both the write and
// read paths: surrounding whitespace stripped, uppercased.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
