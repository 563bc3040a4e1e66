package models

import (
	"time"

	"gorm.io/datatypes"
)

// AppUsage is one {app, minutes} pair inside a screen-time snapshot
type AppUsage struct {
	AppName      string `json:"appName"`
	UsageMinutes int    `json:"usageMinutes"`
}

// Screentime is one append-only device usage snapshot. Snapshots are never
// replaced or deleted; "latest" means the row with the greatest created_at
// for an email. Date is the UTC calendar date (YYYY-MM-DD) of the snapshot.
type Screentime struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	Email             string         `gorm:"not null;index" json:"email"`
	AppUsage          datatypes.JSON `json:"appUsage"`
	TotalUsageMinutes int            `gorm:"not null;default:0" json:"totalUsageMinutes"`
	Date              string         `gorm:"not null" json:"date"`
	CreatedAt         time.Time      `gorm:"index" json:"createdAt"`
}
