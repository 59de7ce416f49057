package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	job "github.com/maheshrc27/instaflow/internal/jobs"
	"github.com/maheshrc27/instaflow/internal/transfer"
	"github.com/stretchr/testify/assert"
)

type fakeDispatcher struct {
	result *transfer.DispatchResult
	err    error
	calls  int
}

func (f *fakeDispatcher) Run(context.Context) (*transfer.DispatchResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeRefresher struct {
	result *transfer.RefreshResult
	err    error
}

func (f *fakeRefresher) Run(context.Context) (*transfer.RefreshResult, error) {
	return f.result, f.err
}

type fakeSnapshotter struct {
	result *transfer.SnapshotResult
	err    error
}

func (f *fakeSnapshotter) Run(context.Context) (*transfer.SnapshotResult, error) {
	return f.result, f.err
}

func TestQueue_HandlersRunJobs(t *testing.T) {
	d := &fakeDispatcher{result: &transfer.DispatchResult{Message: "Processing complete", Processed: 2}}
	q := NewQueue(d,
		&fakeRefresher{result: &transfer.RefreshResult{Refreshed: 1}},
		&fakeSnapshotter{result: &transfer.SnapshotResult{Message: "Daily analytics snapshot complete"}})

	ctx := context.Background()
	assert.NoError(t, q.HandleProcessScheduledPostsTask(ctx, asynq.NewTask(TaskTypeProcessScheduledPosts, nil)))
	assert.NoError(t, q.HandleRefreshTokensTask(ctx, asynq.NewTask(TaskTypeRefreshTokens, nil)))
	assert.NoError(t, q.HandleDailySnapshotTask(ctx, asynq.NewTask(TaskTypeDailySnapshot, nil)))
	assert.Equal(t, 1, d.calls)
}

func TestQueue_RunningJobIsSkipped(t *testing.T) {
	q := NewQueue(&fakeDispatcher{err: job.ErrJobRunning}, &fakeRefresher{}, &fakeSnapshotter{})

	err := q.HandleProcessScheduledPostsTask(context.Background(), asynq.NewTask(TaskTypeProcessScheduledPosts, nil))
	assert.NoError(t, err)
}

func TestQueue_FailureIsNotRetried(t *testing.T) {
	q := NewQueue(&fakeDispatcher{}, &fakeRefresher{}, &fakeSnapshotter{err: errors.New("db down")})

	err := q.HandleDailySnapshotTask(context.Background(), asynq.NewTask(TaskTypeDailySnapshot, nil))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Contains(t, err.Error(), "db down")
}
