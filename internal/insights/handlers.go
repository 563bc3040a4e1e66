// Package insights serves the screen-time procrastination report
package insights

import (
	"log/slog"
	"net/http"

	"github.com/blinkyapp/blinky-server/internal/ai"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetInsightsHandler returns the insights report for one identity
func GetInsightsHandler(db *gorm.DB, client *ai.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}

		report, err := ai.GetInsights(c.Request.Context(), db, client, email)
		if err != nil {
			slog.Error("Failed to build insights", "email", email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch insights"})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}
