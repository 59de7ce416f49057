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
)

const refreshHorizon = 10 * 24 * time.Hour

type TokenRefreshJob struct {
	sa    repository.InstagramAccountRepository
	ts    service.TokenService
	now   func() time.Time
	guard runGuard
}

func NewTokenRefreshJob(sa repository.InstagramAccountRepository, ts service.TokenService) *TokenRefreshJob {
	return &TokenRefreshJob{
		sa:  sa,
		ts:  ts,
		now: time.Now,
	}
}

// Run refreshes every token that expires within the horizon, one account at a
// time. A failing account is reported and left as it was.
func (c *TokenRefreshJob) Run(ctx context.Context) (*transfer.RefreshResult, error) {
	release, err := c.guard.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	accounts, err := c.sa.ListExpiringBefore(ctx, c.now().Add(refreshHorizon))
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring tokens: %w", err)
	}

	result := &transfer.RefreshResult{Errors: []transfer.RefreshError{}}
	if len(accounts) == 0 {
		result.Message = "No tokens need refreshing"
		return result, nil
	}

	for _, acc := range accounts {
		if _, err := c.ts.RefreshToken(ctx, acc); err != nil {
			slog.Info("Unable to refresh token for Instagram", "account_id", acc.ID, "error", err)
			result.Failed++
			result.Errors = append(result.Errors, transfer.RefreshError{User: accountLabel(acc), Error: err.Error()})
			continue
		}
		result.Refreshed++
	}

	return result, nil
}

// RefreshTokens is the cron entry point.
func (c *TokenRefreshJob) RefreshTokens() {
	result, err := c.Run(context.Background())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	slog.Info("token refresh finished", "refreshed", result.Refreshed, "failed", result.Failed)
}

func accountLabel(acc *models.InstagramAccount) string {
	if acc.Username != "" {
		return acc.Username
	}
	if acc.InstagramAccountID != "" {
		return acc.InstagramAccountID
	}
	return fmt.Sprintf("account %d", acc.ID)
}
