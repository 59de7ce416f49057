package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/maheshrc27/instaflow/internal/service"
	"github.com/maheshrc27/instaflow/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func setupPlatformApp(ts service.TokenService) *fiber.App {
	app := fiber.New()
	h := NewPlatformHandler(ts)
	app.Get("/auth/instagram", h.ConnectInstagram)
	app.Post("/auth/instagram/exchange", h.ExchangeInstagram)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestConnectInstagram(t *testing.T) {
	t.Run("redirects to the dialog", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("AuthURL", mock.Anything, "ws-1", "", "").Return("https://www.facebook.com/dialog/oauth?state=abc", nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/instagram?workspace_id=ws-1", nil)
		resp, err := setupPlatformApp(ts).Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "https://www.facebook.com/dialog/oauth?state=abc", resp.Header.Get(fiber.HeaderLocation))
		ts.AssertExpectations(t)
	})

	t.Run("instagram login flavor", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("AuthURL", mock.Anything, "ws-1", "", "instagram").Return("https://www.instagram.com/oauth/authorize?state=abc", nil)

		req := httptest.NewRequest(http.MethodGet, "/auth/instagram?workspace_id=ws-1&flavor=instagram", nil)
		resp, err := setupPlatformApp(ts).Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "https://www.instagram.com/oauth/authorize?state=abc", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("unknown flavor", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("AuthURL", mock.Anything, "ws-1", "", "tiktok").Return("", service.ErrUnknownFlavor)

		req := httptest.NewRequest(http.MethodGet, "/auth/instagram?workspace_id=ws-1&flavor=tiktok", nil)
		resp, err := setupPlatformApp(ts).Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing workspace", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("AuthURL", mock.Anything, "", "", "").Return("", service.ErrMissingWorkspace)

		req := httptest.NewRequest(http.MethodGet, "/auth/instagram", nil)
		resp, err := setupPlatformApp(ts).Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("state store down", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("AuthURL", mock.Anything, "ws-1", "", "").Return("", errors.New("connection refused"))

		req := httptest.NewRequest(http.MethodGet, "/auth/instagram?workspace_id=ws-1", nil)
		resp, err := setupPlatformApp(ts).Test(req)
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}

func TestExchangeInstagram(t *testing.T) {
	exchangeRequest := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/auth/instagram/exchange", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return req
	}

	t.Run("success", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("Exchange", mock.Anything, &transfer.ExchangeRequest{Code: "c", State: "s", WorkspaceID: "ws-1"}).
			Return(&transfer.ConnectedAccount{Username: "acme", ID: "ig-1"}, nil)

		resp, err := setupPlatformApp(ts).Test(exchangeRequest(`{"code":"c","state":"s","workspace_id":"ws-1"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		account := body["account"].(map[string]any)
		assert.Equal(t, "acme", account["username"])
		assert.Equal(t, "ig-1", account["id"])
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := new(mockTokenService)

		resp, err := setupPlatformApp(ts).Test(exchangeRequest(`{"code":`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		ts.AssertNotCalled(t, "Exchange", mock.Anything, mock.Anything)
	})

	t.Run("invalid state", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("Exchange", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidState)

		resp, err := setupPlatformApp(ts).Test(exchangeRequest(`{"code":"c","state":"stale"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, service.ErrInvalidState.Error(), decodeBody(t, resp)["error"])
	})

	t.Run("exchange step failure carries the platform payload", func(t *testing.T) {
		ts := new(mockTokenService)
		exErr := &service.OAuthExchangeError{
			Step:       service.StepPages,
			StatusCode: http.StatusBadRequest,
			Payload:    &transfer.GraphError{Message: "Invalid OAuth access token.", Type: "OAuthException", Code: 190},
			Err:        errors.New("graph api error"),
		}
		ts.On("Exchange", mock.Anything, mock.Anything).Return(nil, exErr)

		resp, err := setupPlatformApp(ts).Test(exchangeRequest(`{"code":"c","state":"s"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, service.StepPages, body["step"])
		details := body["details"].(map[string]any)
		assert.Equal(t, "OAuthException", details["type"])
		assert.EqualValues(t, 190, details["code"])
	})

	t.Run("storage failure", func(t *testing.T) {
		ts := new(mockTokenService)
		ts.On("Exchange", mock.Anything, mock.Anything).Return(nil, errors.New("failed to save instagram account: timeout"))

		resp, err := setupPlatformApp(ts).Test(exchangeRequest(`{"code":"c","state":"s"}`))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", decodeBody(t, resp)["error"])
	})
}
