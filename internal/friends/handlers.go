package friends

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddFriendHandler creates a symmetric friendship
func AddFriendHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserEmail   string `json:"userEmail"`
			FriendEmail string `json:"friendEmail"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UserEmail == "" || req.FriendEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Both userEmail and friendEmail are required"})
			return
		}
		if req.UserEmail == req.FriendEmail {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot add yourself as a friend"})
			return
		}

		if err := Add(db, req.UserEmail, req.FriendEmail); err != nil {
			if errors.Is(err, ErrFriendNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Friend email not found in system"})
				return
			}
			slog.Error("Failed to add friend", "user", req.UserEmail, "friend", req.FriendEmail, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add friend"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Added %s as a friend", req.FriendEmail),
		})
	}
}

// RemoveFriendHandler removes a friendship in both directions
func RemoveFriendHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserEmail   string `json:"userEmail"`
			FriendEmail string `json:"friendEmail"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UserEmail == "" || req.FriendEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Both userEmail and friendEmail are required"})
			return
		}

		if err := Remove(db, req.UserEmail, req.FriendEmail); err != nil {
			slog.Error("Failed to remove friend", "user", req.UserEmail, "friend", req.FriendEmail, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove friend"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Removed %s from friends", req.FriendEmail),
		})
	}
}

// GetFriendsHandler lists a user's friends
func GetFriendsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}

		friendList, err := FriendsOf(db, email)
		if err != nil {
			slog.Error("Failed to fetch friends", "email", email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch friends"})
			return
		}
		if friendList == nil {
			friendList = []FriendInfo{}
		}

		c.JSON(http.StatusOK, gin.H{
			"count":   len(friendList),
			"friends": friendList,
		})
	}
}

// GetLeaderboardHandler returns the screen-time leaderboard with the
// requesting user's entry flagged.
func GetLeaderboardHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}

		board, err := Leaderboard(db, email)
		if err != nil {
			slog.Error("Failed to build leaderboard", "email", email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"count":       len(board),
			"leaderboard": board,
		})
	}
}
