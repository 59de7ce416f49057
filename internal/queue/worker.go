package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	job "github.com/maheshrc27/instaflow/internal/jobs"
)

func (q *Queue) HandleProcessScheduledPostsTask(ctx context.Context, task *asynq.Task) error {
	result, err := q.dispatch.Run(ctx)
	if err != nil {
		return skipOrFail(task, err)
	}

	slog.Info(result.Message, "task", task.Type(), "processed", result.Processed, "failed", result.Failed)
	return nil
}

func (q *Queue) HandleRefreshTokensTask(ctx context.Context, task *asynq.Task) error {
	result, err := q.refresh.Run(ctx)
	if err != nil {
		return skipOrFail(task, err)
	}

	slog.Info("token refresh finished", "task", task.Type(), "refreshed", result.Refreshed, "failed", result.Failed)
	return nil
}

func (q *Queue) HandleDailySnapshotTask(ctx context.Context, task *asynq.Task) error {
	result, err := q.snapshot.Run(ctx)
	if err != nil {
		return skipOrFail(task, err)
	}

	slog.Info(result.Message, "task", task.Type(), "snapshots", result.SnapshotsCreated, "alerts", result.AlertsCreated)
	return nil
}

// skipOrFail drops a task that found its job already running. Anything else
// is reported without retry; the next tick picks the work up again.
func skipOrFail(task *asynq.Task, err error) error {
	if errors.Is(err, job.ErrJobRunning) {
		slog.Info("job already running, skipping", "task", task.Type())
		return nil
	}
	return fmt.Errorf("%s: %v: %w", task.Type(), err, asynq.SkipRetry)
}

func (q *Queue) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeProcessScheduledPosts, q.HandleProcessScheduledPostsTask)
	mux.HandleFunc(TaskTypeRefreshTokens, q.HandleRefreshTokensTask)
	mux.HandleFunc(TaskTypeDailySnapshot, q.HandleDailySnapshotTask)
	return mux
}
