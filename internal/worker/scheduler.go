package worker

import (
	"fmt"

	"github.com/blinkyapp/blinky-server/internal/config"
	"github.com/blinkyapp/blinky-server/internal/logging"
	"github.com/hibiken/asynq"
)

// StartScheduler creates and starts an Asynq Scheduler that enqueues the
// reminder tick on a fixed interval. Returns a stop function for graceful
// shutdown.
func StartScheduler(cfg *config.Config) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Create logger for scheduler
	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			LogLevel: asynq.InfoLevel,
			Logger:   &asynqLoggerAdapter{logger: logger},
		},
	)

	// Register the periodic reminder tick. Fixed-rate cadence: the schedule
	// fires regardless of how the previous tick concluded; overlap is handled
	// by task uniqueness plus the in-flight guard in the handler.
	spec := fmt.Sprintf("@every %s", cfg.ReminderInterval)
	entryID, err := scheduler.Register(spec, NewReminderTickTask(cfg.ReminderInterval))
	if err != nil {
		return nil, fmt.Errorf("failed to register reminder tick: %w", err)
	}

	if err := scheduler.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info("Scheduler started", "entry_id", entryID, "interval", cfg.ReminderInterval.String())
	return func() { scheduler.Shutdown() }, nil
}
