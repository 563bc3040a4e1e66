// Package friends maintains the symmetric friend graph and the screen-time
// leaderboard projection over it.
package friends

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/screentime"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSelfFriend is returned when a user tries to befriend themselves
	ErrSelfFriend = errors.New("cannot add yourself as a friend")
	// ErrFriendNotFound is returned when the target email has no identity
	ErrFriendNotFound = errors.New("friend email not found in system")
)

// FriendInfo is one entry in a user's friend list
type FriendInfo struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TopApp is the most-used app in a leaderboard entry's latest snapshot
type TopApp struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

// LeaderboardEntry is one ranked row of the screen-time leaderboard
type LeaderboardEntry struct {
	Email         string  `json:"email"`
	TotalMinutes  int     `json:"totalMinutes"`
	TopApp        *TopApp `json:"topApp"`
	Date          *string `json:"date"`
	IsCurrentUser bool    `json:"isCurrentUser"`
	Rank          int     `json:"rank"`
}

// Add records a friendship between user and friend. Both directions are
// written in one transaction; re-adding an existing friend is a no-op. The
// friend must already have an identity record.
func Add(db *gorm.DB, user, friend string) error {
	if user == friend {
		return ErrSelfFriend
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", friend).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up friend: %w", err)
	}
	if count == 0 {
		return ErrFriendNotFound
	}

	return db.Transaction(func(tx *gorm.DB) error {
		pairs := []models.Friendship{
			{UserEmail: user, FriendEmail: friend},
			{UserEmail: friend, FriendEmail: user},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pairs).Error; err != nil {
			return fmt.Errorf("failed to create friendship: %w", err)
		}
		return nil
	})
}

// Remove deletes the friendship in both directions. Removing a relation that
// never existed succeeds.
func Remove(db *gorm.DB, user, friend string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(
			"(user_email = ? AND friend_email = ?) OR (user_email = ? AND friend_email = ?)",
			user, friend, friend, user,
		).Delete(&models.Friendship{}).Error
		if err != nil {
			return fmt.Errorf("failed to remove friendship: %w", err)
		}
		return nil
	})
}

// FriendsOf lists user's friends with each friend's identity creation time,
// most recently added first.
func FriendsOf(db *gorm.DB, user string) ([]FriendInfo, error) {
	var result []FriendInfo
	err := db.Table("friendships").
		Select("users.email AS email, users.created_at AS created_at").
		Joins("JOIN users ON users.email = friendships.friend_email AND users.deleted_at IS NULL").
		Where("friendships.user_email = ?", user).
		Order("friendships.created_at DESC").
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return result, nil
}

// Leaderboard ranks every identity that has ever submitted screen time by the
// total minutes of its latest snapshot, most usage first. Identities with no
// snapshot (impossible today, kept for safety) rank with zero usage. Ties
// keep insertion order.
func Leaderboard(db *gorm.DB, user string) ([]LeaderboardEntry, error) {
	emails, err := screentime.DistinctEmails(db)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(emails))
	for _, email := range emails {
		entry := LeaderboardEntry{
			Email:         email,
			IsCurrentUser: email == user,
		}

		latest, err := screentime.Latest(db, email)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			entry.TotalMinutes = latest.TotalUsageMinutes
			entry.Date = &latest.Date

			usage, err := screentime.ParseUsage(latest)
			if err == nil && len(usage) > 0 {
				entry.TopApp = &TopApp{
					Name:    usage[0].AppName,
					Minutes: usage[0].UsageMinutes,
				}
			}
		}

		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalMinutes > entries[j].TotalMinutes
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
