package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/maheshrc27/instaflow/internal/repository"
	"github.com/maheshrc27/instaflow/internal/service"
	"github.com/maheshrc27/instaflow/internal/transfer"
	"github.com/maheshrc27/instaflow/pkg/utils"
)

type SnapshotJob struct {
	accounts  repository.InstagramAccountRepository
	perf      repository.PostPerformanceRepository
	snapshots repository.AnalyticsSnapshotRepository
	alerts    repository.AlertRepository
	followers service.FollowerSource
	now       func() time.Time
	guard     runGuard
}

// NewSnapshotJob wires the daily snapshot. followers may be nil, in which
// case follower counts come from stored data only.
func NewSnapshotJob(
	accounts repository.InstagramAccountRepository,
	perf repository.PostPerformanceRepository,
	snapshots repository.AnalyticsSnapshotRepository,
	alerts repository.AlertRepository,
	followers service.FollowerSource) *SnapshotJob {
	return &SnapshotJob{
		accounts:  accounts,
		perf:      perf,
		snapshots: snapshots,
		alerts:    alerts,
		followers: followers,
		now:       time.Now,
	}
}

func (j *SnapshotJob) Run(ctx context.Context) (*transfer.SnapshotResult, error) {
	release, err := j.guard.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	runID := utils.NewRunID("snapshot")

	accounts, err := j.accounts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	result := &transfer.SnapshotResult{Errors: []string{}}
	if len(accounts) == 0 {
		result.Message = "No accounts to process"
		return result, nil
	}

	now := j.now()
	for _, acc := range accounts {
		alerts, err := j.snapshotAccount(ctx, acc, now)
		result.AlertsCreated += alerts
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Account %d: %v", acc.ID, err))
			slog.Error("failed to snapshot account", "run_id", runID, "account_id", acc.ID, "error", err)
			continue
		}
		result.SnapshotsCreated++
	}

	result.Message = "Daily analytics snapshot complete"
	slog.Info(result.Message, "run_id", runID, "snapshots", result.SnapshotsCreated, "alerts", result.AlertsCreated)
	return result, nil
}

func (j *SnapshotJob) snapshotAccount(ctx context.Context, acc *models.InstagramAccount, now time.Time) (int, error) {
	totals, err := j.perf.TotalsSince(ctx, acc.ID, now.Add(-aggregationWindow))
	if err != nil {
		return 0, err
	}

	followers := j.followersCount(ctx, acc)
	today := utcDate(now)

	err = j.snapshots.Upsert(ctx, &models.AnalyticsSnapshot{
		InstagramAccountID: acc.ID,
		SnapshotDate:       today,
		FollowersCount:     followers,
		PostsCount:         totals.PostsCount,
		TotalLikes:         totals.Likes,
		TotalComments:      totals.Comments,
		EngagementRate:     engagementRate(totals.Likes, totals.Comments, followers),
	})
	if err != nil {
		return 0, err
	}

	created := 0

	history, err := j.snapshots.ListSince(ctx, acc.ID, today.AddDate(0, 0, -2*alertWindow))
	if err != nil {
		slog.Warn("failed to read snapshot history", "account_id", acc.ID, "error", err)
	} else if pct, ok := engagementDrop(history, today); ok {
		if j.createAlert(ctx, acc, models.AlertTypeEngagementDrop, fmt.Sprintf("Engagement dropped %d%% in the last 7 days", pct)) {
			created++
		}
	}

	posted, err := j.perf.ExistsSince(ctx, acc.ID, now.Add(-lowPostingWindow))
	if err != nil {
		slog.Warn("failed to check recent posts", "account_id", acc.ID, "error", err)
	} else if !posted {
		if j.createAlert(ctx, acc, models.AlertTypePostingLow, lowPostingMessage) {
			created++
		}
	}

	return created, nil
}

// followersCount prefers the last stored snapshot, then the live profile, then
// the count cached at connect time.
func (j *SnapshotJob) followersCount(ctx context.Context, acc *models.InstagramAccount) int64 {
	latest, err := j.snapshots.LatestFollowersCount(ctx, acc.ID)
	if err != nil {
		slog.Warn("failed to read latest followers count", "account_id", acc.ID, "error", err)
	}
	if latest > 0 {
		return latest
	}

	if j.followers != nil {
		live, err := j.followers.FollowersCount(ctx, acc)
		if err != nil {
			slog.Debug("live followers count unavailable", "account_id", acc.ID, "error", err)
		} else if live > 0 {
			return live
		}
	}

	if acc.FollowersCount > 0 {
		return acc.FollowersCount
	}
	return 0
}

func (j *SnapshotJob) createAlert(ctx context.Context, acc *models.InstagramAccount, alertType, message string) bool {
	accountID := acc.ID
	_, err := j.alerts.Create(ctx, &models.Alert{
		WorkspaceID:        acc.WorkspaceID,
		InstagramAccountID: &accountID,
		Type:               alertType,
		Message:            message,
	})
	if err != nil {
		slog.Error("failed to create alert", "account_id", acc.ID, "type", alertType, "error", err)
		return false
	}
	return true
}

// DailySnapshot is the cron entry point.
func (j *SnapshotJob) DailySnapshot() {
	result, err := j.Run(context.Background())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	slog.Info(result.Message, "snapshots", result.SnapshotsCreated, "alerts", result.AlertsCreated)
}
