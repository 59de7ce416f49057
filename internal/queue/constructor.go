package queue

import (
	"context"

	"github.com/maheshrc27/instaflow/internal/transfer"
)

type Dispatcher interface {
	Run(ctx context.Context) (*transfer.DispatchResult, error)
}

type TokenRefresher interface {
	Run(ctx context.Context) (*transfer.RefreshResult, error)
}

type Snapshotter interface {
	Run(ctx context.Context) (*transfer.SnapshotResult, error)
}

type Queue struct {
	dispatch Dispatcher
	refresh  TokenRefresher
	snapshot Snapshotter
}

func NewQueue(dispatch Dispatcher, refresh TokenRefresher, snapshot Snapshotter) *Queue {
	return &Queue{
		dispatch: dispatch,
		refresh:  refresh,
		snapshot: snapshot,
	}
}

const (
	TaskTypeProcessScheduledPosts = "jobs:process_scheduled_posts"
	TaskTypeRefreshTokens         = "jobs:refresh_instagram_tokens"
	TaskTypeDailySnapshot         = "jobs:daily_analytics_snapshot"
)
