package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/blinkyapp/blinky-server/internal/push"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterHandler registers or refreshes an identity from the mobile client
// or extension. Rejects push tokens that fail the gateway's syntax check.
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email                string  `json:"email"`
			PushToken            *string `json:"pushToken"`
			NotificationsEnabled *bool   `json:"notificationsEnabled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}

		if req.PushToken != nil && !push.IsExpoPushToken(*req.PushToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Expo push token"})
			return
		}

		if err := Register(db, req.Email, req.PushToken, req.NotificationsEnabled); err != nil {
			slog.Error("Failed to register user", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User registered successfully",
			"email":   req.Email,
		})
	}
}

// ToggleNotificationsHandler flips the notification preference for an
// existing identity.
func ToggleNotificationsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email   string `json:"email"`
			Enabled *bool  `json:"enabled"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}
		if req.Enabled == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Enabled must be a boolean"})
			return
		}

		if err := SetNotificationsEnabled(db, req.Email, *req.Enabled); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			slog.Error("Failed to toggle notifications", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle notifications"})
			return
		}

		message := "Notifications disabled"
		if *req.Enabled {
			message = "Notifications enabled"
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": message,
			"email":   req.Email,
			"enabled": *req.Enabled,
		})
	}
}

// ListUsersHandler returns all identities (admin/debug)
func ListUsersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userList, err := List(db)
		if err != nil {
			slog.Error("Failed to list users", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count": len(userList),
			"users": userList,
		})
	}
}
