package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// Profile is the locally stored user record keyed by the identity provider's
// user id. The moderation gate reads Role from here, not from the token.
type Profile struct {
	ID          string         `json:"id" gorm:"primaryKey;size:255"`
	Name        string         `json:"name" gorm:"size:100"`
	Phone       string         `json:"phone" gorm:"size:32"`
	AvatarURL   *string        `json:"avatar_url" gorm:"size:500"`
	SocialLinks datatypes.JSON `json:"social_links"`
	Role        UserRole       `json:"role" gorm:"not null;default:student;size:32"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
