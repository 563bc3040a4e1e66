// Package assignments implements the full-replace assignment sync protocol
package assignments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/users"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item is one inbound assignment record from the scraper. Every field is
// optional; the scraper runs in a hostile page and extracts whatever it can.
type Item struct {
	ID          *string `json:"id"`
	CourseID    *string `json:"courseId"`
	Title       *string `json:"title"`
	Course      *string `json:"course"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Description *string `json:"description"`
	ActionURL   *string `json:"actionUrl"`
	Type        *string `json:"type"`
	Component   *string `json:"component"`
}

// Replace stores items as the new complete assignment set for email. The
// previous set is deleted and the new batch inserted in one transaction, so a
// concurrent reader never observes the empty intermediate state. Returns the
// number of items stored.
func Replace(db *gorm.DB, email string, items []Item, extractedAt *time.Time) (int, error) {
	if err := users.Ensure(db, email, nil); err != nil {
		return 0, fmt.Errorf("failed to ensure user: %w", err)
	}

	extracted := time.Now()
	if extractedAt != nil {
		extracted = *extractedAt
	}

	rows := make([]models.Assignment, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.Assignment{
			ID:          syntheticID(email, item.ID),
			Email:       email,
			CourseID:    item.CourseID,
			Title:       item.Title,
			Course:      item.Course,
			Date:        item.Date,
			Time:        item.Time,
			Description: item.Description,
			ActionURL:   item.ActionURL,
			Type:        item.Type,
			Component:   item.Component,
			ExtractedAt: extracted,
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.Assignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous assignments: %w", err)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to insert assignments: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// syntheticID builds a storage id that is unique even when the scraper's
// source id is absent or repeats across (or within) sync calls.
func syntheticID(email string, sourceID *string) string {
	source := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if sourceID != nil && *sourceID != "" {
		source = *sourceID
	}
	return fmt.Sprintf("%s-%s-%s", email, source, uuid.NewString())
}

// ListByEmail returns the current assignment set for email, newest first
func ListByEmail(db *gorm.DB, email string) ([]models.Assignment, error) {
	var result []models.Assignment
	err := db.Where("email = ?", email).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return result, nil
}

// ListAll returns every stored assignment, newest first (admin/debug)
func ListAll(db *gorm.DB) ([]models.Assignment, error) {
	var result []models.Assignment
	if err := db.Order("created_at DESC").Find(&result).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return result, nil
}
