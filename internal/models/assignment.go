package models

import "time"

// Assignment is one due-item scraped from the LMS calendar. Every field the
// extension extracts is optional; absent fields are stored as NULL. The ID is
// synthetic (email + source id or timestamp + random fragment) because source
// ids are frequently absent or reused across scrapes.
//
// Date and Time are free text exactly as scraped (e.g. "October 21" and
// "11:59 PM") and are never parsed; ordering is by insertion time only.
type Assignment struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"not null;index" json:"email"`
	CourseID    *string   `json:"courseId"`
	Title       *string   `json:"title"`
	Course      *string   `json:"course"`
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	Description *string   `json:"description"`
	ActionURL   *string   `json:"actionUrl"`
	Type        *string   `json:"type"`
	Component   *string   `json:"component"`
	ExtractedAt time.Time `json:"extractedAt"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}
