package worker

import (
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskReminderTick = "reminders:tick"
)

// NewReminderTickTask creates the periodic reminder task. Uniqueness over the
// tick interval makes the tick single-flight: if the previous tick is still
// queued or running when the scheduler fires again, the new enqueue is
// dropped instead of piling up.
func NewReminderTickTask(interval time.Duration) *asynq.Task {
	return asynq.NewTask(
		TaskReminderTick,
		nil,
		asynq.MaxRetry(0),
		asynq.Timeout(10*interval),
		asynq.Unique(interval),
	)
}
