// Package repomock holds testify mocks of the repository interfaces.
package repomock

import (
	"context"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/stretchr/testify/mock"
)

type InstagramAccountRepository struct {
	mock.Mock
}

func (m *InstagramAccountRepository) Upsert(ctx context.Context, acc *models.InstagramAccount) (int64, error) {
	args := m.Called(ctx, acc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *InstagramAccountRepository) GetByID(ctx context.Context, id int64) (*models.InstagramAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InstagramAccount), args.Error(1)
}

func (m *InstagramAccountRepository) ListAll(ctx context.Context) ([]*models.InstagramAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InstagramAccount), args.Error(1)
}

func (m *InstagramAccountRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.InstagramAccount, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InstagramAccount), args.Error(1)
}

func (m *InstagramAccountRepository) SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	args := m.Called(ctx, id, accessToken, expiresAt)
	return args.Error(0)
}

type OAuthStateRepository struct {
	mock.Mock
}

func (m *OAuthStateRepository) Create(ctx context.Context, state *models.OAuthState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *OAuthStateRepository) Consume(ctx context.Context, nonce string) (*models.OAuthState, error) {
	args := m.Called(ctx, nonce)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OAuthState), args.Error(1)
}

func (m *OAuthStateRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}

type ScheduledPostRepository struct {
	mock.Mock
}

func (m *ScheduledPostRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledPost, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledPost), args.Error(1)
}

func (m *ScheduledPostRepository) Claim(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *ScheduledPostRepository) MarkPublished(ctx context.Context, id int64, publishedAt time.Time, externalPostID string) error {
	args := m.Called(ctx, id, publishedAt, externalPostID)
	return args.Error(0)
}

func (m *ScheduledPostRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	args := m.Called(ctx, id, errorMessage)
	return args.Error(0)
}

type PostPerformanceRepository struct {
	mock.Mock
}

func (m *PostPerformanceRepository) Create(ctx context.Context, pp *models.PostPerformance) (int64, error) {
	args := m.Called(ctx, pp)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PostPerformanceRepository) TotalsSince(ctx context.Context, accountID int64, since time.Time) (*models.PerformanceTotals, error) {
	args := m.Called(ctx, accountID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PerformanceTotals), args.Error(1)
}

func (m *PostPerformanceRepository) ExistsSince(ctx context.Context, accountID int64, since time.Time) (bool, error) {
	args := m.Called(ctx, accountID, since)
	return args.Bool(0), args.Error(1)
}

type AnalyticsSnapshotRepository struct {
	mock.Mock
}

func (m *AnalyticsSnapshotRepository) Upsert(ctx context.Context, s *models.AnalyticsSnapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *AnalyticsSnapshotRepository) LatestFollowersCount(ctx context.Context, accountID int64) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AnalyticsSnapshotRepository) ListSince(ctx context.Context, accountID int64, since time.Time) ([]*models.AnalyticsSnapshot, error) {
	args := m.Called(ctx, accountID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalyticsSnapshot), args.Error(1)
}

type AlertRepository struct {
	mock.Mock
}

func (m *AlertRepository) Create(ctx context.Context, alert *models.Alert) (int64, error) {
	args := m.Called(ctx, alert)
	return args.Get(0).(int64), args.Error(1)
}
