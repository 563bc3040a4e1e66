package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a student identity keyed by email. The email is a bare,
// unverified identifier; at most one push token is held per user and the
// last registered token wins.
type User struct {
	gorm.Model
	Email                string  `gorm:"uniqueIndex:idx_users_email_not_deleted,where:deleted_at IS NULL;not null"`
	PushToken            *string `gorm:"type:text"`
	NotificationsEnabled bool    `gorm:"not null;default:true"`
	LastSeenAt           *time.Time
}
