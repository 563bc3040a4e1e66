package notifications

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/blinkyapp/blinky-server/internal/push"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SendNotificationHandler dispatches an ad-hoc notification to one identity
// or to every registered device.
func SendNotificationHandler(db *gorm.DB, client *push.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Title string                 `json:"title"`
			Body  string                 `json:"body"`
			Data  map[string]interface{} `json:"data"`
			Email *string                `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Body == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title and body are required"})
			return
		}

		result, err := Send(c.Request.Context(), db, client, Input{
			Title: req.Title,
			Body:  req.Body,
			Data:  req.Data,
			Email: req.Email,
		})
		if err != nil {
			if errors.Is(err, ErrNoTokens) {
				c.JSON(http.StatusNotFound, gin.H{"error": "No registered push tokens found"})
				return
			}
			slog.Error("Failed to send notifications", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send notifications"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"count":   result.Count,
			"tickets": result.Tickets,
		})
	}
}
