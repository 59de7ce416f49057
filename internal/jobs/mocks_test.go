package job

import (
	"context"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/maheshrc27/instaflow/internal/service"
	"github.com/maheshrc27/instaflow/internal/transfer"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, post *models.ScheduledPost, acc *models.InstagramAccount) (*service.PublishOutcome, error) {
	args := m.Called(ctx, post, acc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublishOutcome), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) AuthURL(ctx context.Context, workspaceID, redirectURI, flavor string) (string, error) {
	args := m.Called(ctx, workspaceID, redirectURI, flavor)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) Exchange(ctx context.Context, req *transfer.ExchangeRequest) (*transfer.ConnectedAccount, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.ConnectedAccount), args.Error(1)
}

func (m *mockTokenService) RefreshToken(ctx context.Context, acc *models.InstagramAccount) (time.Time, error) {
	args := m.Called(ctx, acc)
	return args.Get(0).(time.Time), args.Error(1)
}

type mockFollowerSource struct {
	mock.Mock
}

func (m *mockFollowerSource) FollowersCount(ctx context.Context, acc *models.InstagramAccount) (int64, error) {
	args := m.Called(ctx, acc)
	return args.Get(0).(int64), args.Error(1)
}
