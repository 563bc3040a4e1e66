package screentime

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StoreScreentimeHandler receives a usage snapshot from the mobile client
func StoreScreentimeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string             `json:"email"`
			AppUsage *[]models.AppUsage `json:"appUsage"`
			Date     string             `json:"date"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}
		if req.AppUsage == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "appUsage array is required"})
			return
		}

		result, err := Append(db, req.Email, *req.AppUsage, req.Date)
		if err != nil {
			slog.Error("Failed to store screentime", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process screen time data"})
			return
		}

		date := req.Date
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}
		received := gin.H{
			"email":             req.Email,
			"date":              date,
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
			"appUsage":          *req.AppUsage,
			"totalApps":         result.AppCount,
			"totalUsageMinutes": result.TotalMinutes,
		}

		slog.Info("Screen time stored",
			"email", req.Email,
			"total_minutes", result.TotalMinutes,
			"apps", result.AppCount,
		)
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"message":  "Screen time data received and stored",
			"received": received,
		})
	}
}
