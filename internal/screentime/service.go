// Package screentime stores append-only device usage snapshots
package screentime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/users"
	"gorm.io/gorm"
)

// Result summarizes one stored snapshot
type Result struct {
	TotalMinutes int
	AppCount     int
}

// Append stores a new snapshot for email. Snapshots are never replaced; the
// date defaults to the current UTC calendar date when the client omits it.
func Append(db *gorm.DB, email string, usage []models.AppUsage, date string) (Result, error) {
	if err := users.Ensure(db, email, nil); err != nil {
		return Result{}, fmt.Errorf("failed to ensure user: %w", err)
	}

	total := 0
	for _, app := range usage {
		total += app.UsageMinutes
	}

	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	usageJSON, err := json.Marshal(usage)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal app usage: %w", err)
	}

	row := models.Screentime{
		Email:             email,
		AppUsage:          usageJSON,
		TotalUsageMinutes: total,
		Date:              date,
	}
	if err := db.Create(&row).Error; err != nil {
		return Result{}, fmt.Errorf("failed to store screentime: %w", err)
	}

	return Result{TotalMinutes: total, AppCount: len(usage)}, nil
}

// Latest returns the most recent snapshot for email, or nil when the user
// has never submitted one.
func Latest(db *gorm.DB, email string) (*models.Screentime, error) {
	var row models.Screentime
	err := db.Where("email = ?", email).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest screentime: %w", err)
	}
	return &row, nil
}

// ParseUsage decodes the stored app-usage JSON of a snapshot
func ParseUsage(row *models.Screentime) ([]models.AppUsage, error) {
	var usage []models.AppUsage
	if err := json.Unmarshal(row.AppUsage, &usage); err != nil {
		return nil, fmt.Errorf("failed to decode app usage: %w", err)
	}
	return usage, nil
}

// DistinctEmails returns every identity that has ever submitted a snapshot
func DistinctEmails(db *gorm.DB) ([]string, error) {
	var emails []string
	err := db.Model(&models.Screentime{}).
		Distinct().
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list screentime emails: %w", err)
	}
	return emails, nil
}
