// Package notifications resolves push targets and dispatches notifications
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/blinkyapp/blinky-server/internal/models"
	"github.com/blinkyapp/blinky-server/internal/push"
	"gorm.io/gorm"
)

// ErrNoTokens is returned when no registered push token matches the target
var ErrNoTokens = errors.New("no registered push tokens found")

// Input describes one notification request. A nil Email broadcasts to every
// identity with a registered token.
type Input struct {
	Title string
	Body  string
	Data  map[string]interface{}
	Email *string
}

// Result reports how many messages were submitted and their tickets
type Result struct {
	Count   int           `json:"count"`
	Tickets []push.Ticket `json:"tickets"`
}

// Send resolves the target tokens, drops any that fail the gateway syntax
// check (logged, not fatal), and submits the rest. Returns ErrNoTokens when
// the resolved identity set is empty.
func Send(ctx context.Context, db *gorm.DB, client *push.Client, input Input) (*Result, error) {
	query := db.Where("push_token IS NOT NULL")
	if input.Email != nil {
		query = query.Where("email = ?", *input.Email)
	}

	var targets []models.User
	if err := query.Find(&targets).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve push targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, ErrNoTokens
	}

	data := input.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	messages := make([]push.Message, 0, len(targets))
	for _, user := range targets {
		token := *user.PushToken
		if !push.IsExpoPushToken(token) {
			slog.Warn("Skipping invalid push token", "email", user.Email, "token", token)
			continue
		}
		messages = append(messages, push.Message{
			To:    token,
			Sound: "default",
			Title: input.Title,
			Body:  input.Body,
			Data:  data,
		})
	}

	tickets, err := client.Send(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to send notifications: %w", err)
	}
	if tickets == nil {
		tickets = []push.Ticket{}
	}

	return &Result{Count: len(messages), Tickets: tickets}, nil
}
