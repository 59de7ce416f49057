package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/maheshrc27/instaflow/internal/repository/repomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type snapshotFixture struct {
	accounts  *repomock.InstagramAccountRepository
	perf      *repomock.PostPerformanceRepository
	snapshots *repomock.AnalyticsSnapshotRepository
	alerts    *repomock.AlertRepository
	followers *mockFollowerSource
	job       *SnapshotJob
}

func newSnapshotFixture() *snapshotFixture {
	f := &snapshotFixture{
		accounts:  new(repomock.InstagramAccountRepository),
		perf:      new(repomock.PostPerformanceRepository),
		snapshots: new(repomock.AnalyticsSnapshotRepository),
		alerts:    new(repomock.AlertRepository),
		followers: new(mockFollowerSource),
	}
	f.job = NewSnapshotJob(f.accounts, f.perf, f.snapshots, f.alerts, f.followers)
	f.job.now = func() time.Time { return fixedNow }
	return f
}

var today = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func TestSnapshotJob_NoAccounts(t *testing.T) {
	f := newSnapshotFixture()
	f.accounts.On("ListAll", mock.Anything).Return([]*models.InstagramAccount{}, nil)

	result, err := f.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No accounts to process", result.Message)
	assert.Zero(t, result.SnapshotsCreated)
}

func TestSnapshotJob_ListFailureFailsRun(t *testing.T) {
	f := newSnapshotFixture()
	f.accounts.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))

	_, err := f.job.Run(context.Background())
	assert.Error(t, err)
}

func TestSnapshotJob_SnapshotAndAlerts(t *testing.T) {
	f := newSnapshotFixture()
	acc := &models.InstagramAccount{ID: 4, WorkspaceID: "ws-1", InstagramAccountID: "ig-4", FollowersCount: 50}
	f.accounts.On("ListAll", mock.Anything).Return([]*models.InstagramAccount{acc}, nil)
	f.perf.On("TotalsSince", mock.Anything, int64(4), fixedNow.Add(-30*24*time.Hour)).
		Return(&models.PerformanceTotals{Likes: 300, Comments: 20, PostsCount: 4}, nil)
	f.snapshots.On("LatestFollowersCount", mock.Anything, int64(4)).Return(int64(0), nil)
	f.followers.On("FollowersCount", mock.Anything, acc).Return(int64(2000), nil)

	var stored *models.AnalyticsSnapshot
	f.snapshots.On("Upsert", mock.Anything, mock.AnythingOfType("*models.AnalyticsSnapshot")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.AnalyticsSnapshot) }).
		Return(nil)
	f.snapshots.On("ListSince", mock.Anything, int64(4), today.AddDate(0, 0, -14)).
		Return([]*models.AnalyticsSnapshot{snap(0, 1), snap(9, 2)}, nil)
	f.perf.On("ExistsSince", mock.Anything, int64(4), fixedNow.Add(-10*24*time.Hour)).Return(false, nil)

	var alerts []*models.Alert
	f.alerts.On("Create", mock.Anything, mock.AnythingOfType("*models.Alert")).
		Run(func(args mock.Arguments) { alerts = append(alerts, args.Get(1).(*models.Alert)) }).
		Return(int64(1), nil)

	result, err := f.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Daily analytics snapshot complete", result.Message)
	assert.Equal(t, 1, result.SnapshotsCreated)
	assert.Equal(t, 2, result.AlertsCreated)
	assert.Empty(t, result.Errors)

	require.NotNil(t, stored)
	assert.Equal(t, today, stored.SnapshotDate)
	assert.Equal(t, int64(2000), stored.FollowersCount)
	assert.Equal(t, int64(4), stored.PostsCount)
	assert.Equal(t, 16.0, stored.EngagementRate)

	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertTypeEngagementDrop, alerts[0].Type)
	assert.Equal(t, "Engagement dropped 50% in the last 7 days", alerts[0].Message)
	assert.Equal(t, "ws-1", alerts[0].WorkspaceID)
	require.NotNil(t, alerts[0].InstagramAccountID)
	assert.Equal(t, int64(4), *alerts[0].InstagramAccountID)
	assert.Equal(t, models.AlertTypePostingLow, alerts[1].Type)
}

func TestSnapshotJob_NoAlertsWhenHealthy(t *testing.T) {
	f := newSnapshotFixture()
	acc := &models.InstagramAccount{ID: 4, WorkspaceID: "ws-1"}
	f.accounts.On("ListAll", mock.Anything).Return([]*models.InstagramAccount{acc}, nil)
	f.perf.On("TotalsSince", mock.Anything, int64(4), mock.Anything).Return(&models.PerformanceTotals{}, nil)
	f.snapshots.On("LatestFollowersCount", mock.Anything, int64(4)).Return(int64(900), nil)
	f.snapshots.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.snapshots.On("ListSince", mock.Anything, int64(4), mock.Anything).Return([]*models.AnalyticsSnapshot{snap(0, 1)}, nil)
	f.perf.On("ExistsSince", mock.Anything, int64(4), mock.Anything).Return(true, nil)

	result, err := f.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SnapshotsCreated)
	assert.Zero(t, result.AlertsCreated)
	f.followers.AssertNotCalled(t, "FollowersCount", mock.Anything, mock.Anything)
	f.alerts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSnapshotJob_AccountFailuresAreIsolated(t *testing.T) {
	f := newSnapshotFixture()
	broken := &models.InstagramAccount{ID: 1}
	healthy := &models.InstagramAccount{ID: 2}
	f.accounts.On("ListAll", mock.Anything).Return([]*models.InstagramAccount{broken, healthy}, nil)
	f.perf.On("TotalsSince", mock.Anything, int64(1), mock.Anything).Return(nil, errors.New("query canceled"))
	f.perf.On("TotalsSince", mock.Anything, int64(2), mock.Anything).Return(&models.PerformanceTotals{}, nil)
	f.snapshots.On("LatestFollowersCount", mock.Anything, int64(2)).Return(int64(10), nil)
	f.snapshots.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	f.snapshots.On("ListSince", mock.Anything, int64(2), mock.Anything).Return([]*models.AnalyticsSnapshot{}, nil)
	f.perf.On("ExistsSince", mock.Anything, int64(2), mock.Anything).Return(true, nil)

	result, err := f.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SnapshotsCreated)
	assert.Equal(t, []string{"Account 1: query canceled"}, result.Errors)
}

func TestSnapshotJob_FollowersFallback(t *testing.T) {
	tests := []struct {
		name   string
		latest int64
		live   int64
		cached int64
		liveOK bool
		want   int64
	}{
		{name: "latest snapshot", latest: 700, live: 900, liveOK: true, cached: 100, want: 700},
		{name: "live fetch", live: 900, liveOK: true, cached: 100, want: 900},
		{name: "cached column", liveOK: false, cached: 100, want: 100},
		{name: "nothing known", liveOK: false, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSnapshotFixture()
			acc := &models.InstagramAccount{ID: 1, FollowersCount: tt.cached}
			f.snapshots.On("LatestFollowersCount", mock.Anything, int64(1)).Return(tt.latest, nil)
			if tt.liveOK {
				f.followers.On("FollowersCount", mock.Anything, acc).Return(tt.live, nil)
			} else {
				f.followers.On("FollowersCount", mock.Anything, acc).Return(int64(0), errors.New("token expired"))
			}

			assert.Equal(t, tt.want, f.job.followersCount(context.Background(), acc))
		})
	}
}

func TestSnapshotJob_ZeroFollowersGivesZeroRate(t *testing.T) {
	f := newSnapshotFixture()
	f.job.followers = nil
	acc := &models.InstagramAccount{ID: 1}
	f.accounts.On("ListAll", mock.Anything).Return([]*models.InstagramAccount{acc}, nil)
	f.perf.On("TotalsSince", mock.Anything, int64(1), mock.Anything).Return(&models.PerformanceTotals{Likes: 50, Comments: 5, PostsCount: 1}, nil)
	f.snapshots.On("LatestFollowersCount", mock.Anything, int64(1)).Return(int64(0), nil)
	f.snapshots.On("Upsert", mock.Anything, mock.MatchedBy(func(s *models.AnalyticsSnapshot) bool {
		return s.FollowersCount == 0 && s.EngagementRate == 0
	})).Return(nil)
	f.snapshots.On("ListSince", mock.Anything, int64(1), mock.Anything).Return([]*models.AnalyticsSnapshot{}, nil)
	f.perf.On("ExistsSince", mock.Anything, int64(1), mock.Anything).Return(true, nil)

	result, err := f.job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.SnapshotsCreated)
	f.snapshots.AssertExpectations(t)
}

// memorySnapshots keys rows the way the unique constraint does.
type memorySnapshots struct {
	repomock.AnalyticsSnapshotRepository
	rows map[string]*models.AnalyticsSnapshot
}

func (m *memorySnapshots) Upsert(_ context.Context, s *models.AnalyticsSnapshot) error {
	key := s.SnapshotDate.Format("2006-01-02")
	cp := *s
	m.rows[key] = &cp
	return nil
}

func (m *memorySnapshots) LatestFollowersCount(context.Context, int64) (int64, error) {
	return 0, nil
}

func (m *memorySnapshots) ListSince(context.Context, int64, time.Time) ([]*models.AnalyticsSnapshot, error) {
	return nil, nil
}

func TestSnapshotJob_RerunSameDayOverwrites(t *testing.T) {
	store := &memorySnapshots{rows: map[string]*models.AnalyticsSnapshot{}}
	accounts := new(repomock.InstagramAccountRepository)
	perf := new(repomock.PostPerformanceRepository)

	j := NewSnapshotJob(accounts, perf, store, new(repomock.AlertRepository), nil)
	j.now = func() time.Time { return fixedNow }

	acc := &models.InstagramAccount{ID: 1, FollowersCount: 100}
	accounts.On("ListAll", mock.Anything).Return([]*models.InstagramAccount{acc}, nil)
	perf.On("TotalsSince", mock.Anything, int64(1), mock.Anything).Return(&models.PerformanceTotals{Likes: 10}, nil).Once()
	perf.On("TotalsSince", mock.Anything, int64(1), mock.Anything).Return(&models.PerformanceTotals{Likes: 20}, nil).Once()
	perf.On("ExistsSince", mock.Anything, int64(1), mock.Anything).Return(true, nil)

	_, err := j.Run(context.Background())
	require.NoError(t, err)

	j.now = func() time.Time { return fixedNow.Add(6 * time.Hour) }
	_, err = j.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.rows, 1)
	assert.Equal(t, int64(20), store.rows["2025-03-10"].TotalLikes)
	assert.Equal(t, 20.0, store.rows["2025-03-10"].EngagementRate)
}
