// Package worker runs the background reminder loop on an Asynq server
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blinkyapp/blinky-server/internal/ai"
	"github.com/blinkyapp/blinky-server/internal/assignments"
	"github.com/blinkyapp/blinky-server/internal/config"
	"github.com/blinkyapp/blinky-server/internal/logging"
	"github.com/blinkyapp/blinky-server/internal/push"
	"github.com/blinkyapp/blinky-server/internal/users"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// tickLockKey guards against a tick outliving its uniqueness window and
// overlapping the next one.
const tickLockKey = "reminders:tick:inflight"

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

// Implement asynq.Logger interface methods
func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// dispatcher is the slice of push.Client the reminder loop needs
type dispatcher interface {
	Send(ctx context.Context, messages []push.Message) ([]push.Ticket, error)
}

// Run starts the Asynq worker server and blocks until shutdown signal.
// Use this for standalone worker mode.
func Run(cfg *config.Config, db *gorm.DB, aiClient *ai.Client, pushClient *push.Client) error {
	srv, mux, err := newServer(cfg, db, aiClient, pushClient)
	if err != nil {
		return err
	}

	// Run blocks and handles its own signal interception
	return srv.Run(mux)
}

// Start starts the Asynq worker in non-blocking mode and returns a stop
// function. Use this for embedded mode so the caller can coordinate shutdown.
func Start(cfg *config.Config, db *gorm.DB, aiClient *ai.Client, pushClient *push.Client) (stop func(), err error) {
	srv, mux, err := newServer(cfg, db, aiClient, pushClient)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(mux); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}
	return func() { srv.Shutdown() }, nil
}

func newServer(cfg *config.Config, db *gorm.DB, aiClient *ai.Client, pushClient *push.Client) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     5,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	// Dedicated Redis client for the tick in-flight guard. Separate from the
	// Asynq internal connection.
	rdb, err := newTickRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tick Redis client: %w", err)
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReminderTick, handleReminderTick(logger, db, rdb, aiClient, pushClient, cfg.ReminderInterval))

	logger.Info("Worker starting", "concurrency", 5, "redis", cfg.RedisURL)
	return srv, mux, nil
}

func newTickRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// handleReminderTick processes one reminder tick: enumerate notifiable
// identities and, per identity, fetch assignments, compose a reminder and
// dispatch it. Per-identity failures are logged and skipped; they never
// abort the tick.
func handleReminderTick(logger *slog.Logger, db *gorm.DB, rdb *redis.Client, aiClient *ai.Client, pushClient *push.Client, interval time.Duration) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, task *asynq.Task) error {
		// In-flight guard: task uniqueness covers the enqueue window, this
		// covers a tick that runs longer than the interval.
		locked, err := rdb.SetNX(ctx, tickLockKey, time.Now().Format(time.RFC3339), 2*interval).Result()
		if err != nil {
			logger.Warn("Tick guard unavailable, proceeding without it", "error", err.Error())
		} else if !locked {
			logger.Info("Previous reminder tick still running, skipping this tick")
			return nil
		} else {
			defer func() {
				if err := rdb.Del(context.WithoutCancel(ctx), tickLockKey).Err(); err != nil {
					logger.Warn("Failed to release tick guard", "error", err.Error())
				}
			}()
		}

		logger.Info("Running reminder tick")
		return runTick(ctx, logger, db, aiClient, pushClient)
	}
}

// runTick is the guard-free tick body
func runTick(ctx context.Context, logger *slog.Logger, db *gorm.DB, aiClient *ai.Client, d dispatcher) error {
	notifiable, err := users.ListNotifiable(db)
	if err != nil {
		return fmt.Errorf("failed to list notifiable users: %w", err)
	}

	for _, user := range notifiable {
		processReminder(ctx, logger, db, aiClient, d, user.Email, user.PushToken)
	}

	logger.Info("Reminder tick completed", "users", len(notifiable))
	return nil
}

// processReminder handles a single identity within a tick. Failures are
// logged and confined to this identity.
func processReminder(ctx context.Context, logger *slog.Logger, db *gorm.DB, aiClient *ai.Client, d dispatcher, email string, token *string) {
	assignmentList, err := assignments.ListByEmail(db, email)
	if err != nil {
		logger.Error("Failed to fetch assignments", "email", email, "error", err.Error())
		return
	}

	// Only remind users who actually have assignments
	if len(assignmentList) == 0 {
		logger.Info("Skipping user with no assignments", "email", email)
		return
	}

	if token == nil || !push.IsExpoPushToken(*token) {
		logger.Warn("Skipping user with invalid push token", "email", email)
		return
	}

	body := ai.ReminderMessage(ctx, db, aiClient, email, assignmentList)

	tickets, err := d.Send(ctx, []push.Message{{
		To:    *token,
		Sound: "default",
		Title: "Blinky",
		Body:  body,
		Data: map[string]interface{}{
			"type":            "reminder",
			"assignmentCount": len(assignmentList),
			"email":           email,
		},
	}})
	if err != nil {
		logger.Error("Failed to send reminder", "email", email, "error", err.Error())
		return
	}
	if len(tickets) > 0 && tickets[0].Status != "ok" {
		logger.Warn("Reminder ticket reported error",
			"email", email,
			"ticket_message", tickets[0].Message,
		)
		return
	}

	logger.Info("Sent reminder", "email", email, "body", body)
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)
	}
}
