package queue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/instaflow/configs"
)

// uniqueFor bounds how long an enqueued job blocks a duplicate of itself, so
// replicas sharing one Redis do not stack the same run.
const uniqueFor = 10 * time.Minute

type periodicTask struct {
	spec     string
	taskType string
}

func periodicTasks(sched config.Schedule) []periodicTask {
	return []periodicTask{
		{spec: sched.Dispatch, taskType: TaskTypeProcessScheduledPosts},
		{spec: sched.TokenRefresh, taskType: TaskTypeRefreshTokens},
		{spec: sched.Snapshot, taskType: TaskTypeDailySnapshot},
	}
}

// RegisterPeriodic adds the three jobs to an asynq scheduler.
func RegisterPeriodic(scheduler *asynq.Scheduler, sched config.Schedule) error {
	for _, pt := range periodicTasks(sched) {
		if pt.spec == "" {
			continue
		}

		task := asynq.NewTask(pt.taskType, nil)
		entryID, err := scheduler.Register(pt.spec, task, asynq.Unique(uniqueFor), asynq.MaxRetry(0))
		if err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.taskType, err)
		}

		slog.Info("periodic task registered", "task", pt.taskType, "spec", pt.spec, "entry_id", entryID)
	}
	return nil
}
