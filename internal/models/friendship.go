package models

import "time"

// Friendship is one direction of a symmetric friend relation. Adding a friend
// always writes both directions in the same transaction so that "friends of
// A" is a plain lookup on user_email.
type Friendship struct {
	UserEmail   string    `gorm:"primaryKey"`
	FriendEmail string    `gorm:"primaryKey"`
	CreatedAt   time.Time
}
