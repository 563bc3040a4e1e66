package assignments

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StoreAssignmentsHandler receives a sync payload from the extension and
// replaces the caller's assignment set wholesale.
func StoreAssignmentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email       string  `json:"email"`
			Assignments *[]Item `json:"assignments"`
			ExtractedAt *string `json:"extractedAt"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Assignments == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Assignments array is required"})
			return
		}
		if req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}

		var extractedAt *time.Time
		if req.ExtractedAt != nil {
			if parsed, err := time.Parse(time.RFC3339, *req.ExtractedAt); err == nil {
				extractedAt = &parsed
			}
		}

		count, err := Replace(db, req.Email, *req.Assignments, extractedAt)
		if err != nil {
			slog.Error("Failed to store assignments", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store assignments"})
			return
		}

		slog.Info("Assignments synced", "email", req.Email, "count", count)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Received %d assignments", count),
			"count":   count,
		})
	}
}

// GetAssignmentsHandler returns assignments for one email, or all of them
// when no email is given (admin/debug).
func GetAssignmentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")

		var result []models.Assignment
		var err error
		if email != "" {
			result, err = ListByEmail(db, email)
		} else {
			result, err = ListAll(db)
		}
		if err != nil {
			slog.Error("Failed to fetch assignments", "email", email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch assignments"})
			return
		}
		if result == nil {
			result = []models.Assignment{}
		}

		c.JSON(http.StatusOK, gin.H{
			"count":       len(result),
			"assignments": result,
		})
	}
}
