package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is a per-user inbox entry shown by the notification bell.
type Notification struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    string         `json:"user_id" gorm:"not null;index;size:255"`
	Title     string         `json:"title" gorm:"not null;size:200"`
	Message   string         `json:"message" gorm:"not null;type:text"`
	IsRead    bool           `json:"is_read" gorm:"not null;default:false"`
	Data      datatypes.JSON `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
