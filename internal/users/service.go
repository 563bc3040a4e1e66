package users

import (
	"errors"
	"fmt"
	"time"

	"github.com/blinkyapp/blinky-server/internal/models"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when an operation references an email with no
// identity record.
var ErrUserNotFound = errors.New("user not found")

// UserInfo is the admin/debug projection of a user record
type UserInfo struct {
	Email     string     `json:"email"`
	PushToken *string    `json:"pushToken"`
	CreatedAt time.Time  `json:"createdAt"`
	LastSeen  *time.Time `json:"lastSeen"`
}

// Ensure upserts the identity for email. A nil pushToken never overwrites a
// stored token; last_seen_at is refreshed on every call. Safe to call from
// any endpoint that references an email.
func Ensure(db *gorm.DB, email string, pushToken *string) error {
	now := time.Now()

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			Email:                email,
			PushToken:            pushToken,
			NotificationsEnabled: true,
			LastSeenAt:           &now,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	updates := map[string]interface{}{"last_seen_at": now}
	if pushToken != nil {
		updates["push_token"] = *pushToken
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// Register upserts the identity and, when the flag is supplied, updates the
// notification preference.
func Register(db *gorm.DB, email string, pushToken *string, notificationsEnabled *bool) error {
	if err := Ensure(db, email, pushToken); err != nil {
		return err
	}

	if notificationsEnabled != nil {
		if err := db.Model(&models.User{}).
			Where("email = ?", email).
			Update("notifications_enabled", *notificationsEnabled).Error; err != nil {
			return fmt.Errorf("failed to update notification preference: %w", err)
		}
	}
	return nil
}

// SetNotificationsEnabled updates the notification preference for an existing
// identity. Returns ErrUserNotFound when no identity exists for email.
func SetNotificationsEnabled(db *gorm.DB, email string, enabled bool) error {
	result := db.Model(&models.User{}).
		Where("email = ?", email).
		Update("notifications_enabled", enabled)
	if result.Error != nil {
		return fmt.Errorf("failed to update notification preference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListNotifiable returns users with a registered push token and notifications
// enabled. Used exclusively by the reminder worker.
func ListNotifiable(db *gorm.DB) ([]models.User, error) {
	var result []models.User
	err := db.Where("push_token IS NOT NULL AND notifications_enabled = ?", true).
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifiable users: %w", err)
	}
	return result, nil
}

// List returns the admin/debug projection of all users
func List(db *gorm.DB) ([]UserInfo, error) {
	var result []models.User
	if err := db.Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	infos := make([]UserInfo, 0, len(result))
	for _, u := range result {
		infos = append(infos, UserInfo{
			Email:     u.Email,
			PushToken: u.PushToken,
			CreatedAt: u.CreatedAt,
			LastSeen:  u.LastSeenAt,
		})
	}
	return infos, nil
}
