package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/maheshrc27/instaflow/configs"
	"github.com/maheshrc27/instaflow/internal/models"
	"github.com/maheshrc27/instaflow/internal/repository"
	"github.com/maheshrc27/instaflow/internal/transfer"
	"github.com/maheshrc27/instaflow/pkg/utils"
	"golang.org/x/oauth2"
)

const (
	stateTTL             = 10 * time.Minute
	defaultTokenLifetime = int64(models.DefaultTokenLifetime / time.Second)
)

// Exchange steps, in order. They name the failing hop in OAuthExchangeError.
const (
	StepShortLivedToken = "short_lived_token"
	StepLongLivedToken  = "long_lived_token"
	StepPages           = "pages"
	StepBusinessAccount = "instagram_business_account"
	StepPageToken       = "page_token"
	StepProfile         = "profile"
)

var facebookLoginScopes = []string{
	"instagram_basic",
	"instagram_content_publish",
	"pages_show_list",
	"pages_read_engagement",
	"business_management",
}

var instagramLoginScopes = []string{
	"instagram_business_basic",
	"instagram_business_content_publish",
}

type TokenService interface {
	AuthURL(ctx context.Context, workspaceID, redirectURI, flavor string) (string, error)
	Exchange(ctx context.Context, req *transfer.ExchangeRequest) (*transfer.ConnectedAccount, error)
	RefreshToken(ctx context.Context, acc *models.InstagramAccount) (time.Time, error)
}

type tokenService struct {
	cfg    config.Config
	sa     repository.InstagramAccountRepository
	st     repository.OAuthStateRepository
	graph  *GraphClient
	cipher *utils.TokenCipher
	http   *http.Client
	now    func() time.Time
}

func NewTokenService(
	cfg config.Config,
	sa repository.InstagramAccountRepository,
	st repository.OAuthStateRepository,
	graph *GraphClient,
	cipher *utils.TokenCipher) TokenService {
	return &tokenService{
		cfg:    cfg,
		sa:     sa,
		st:     st,
		graph:  graph,
		cipher: cipher,
		http:   &http.Client{Timeout: cfg.HTTPTimeout},
		now:    time.Now,
	}
}

func (s *tokenService) oauthConfig(flavor, redirectURI string) *oauth2.Config {
	if flavor == models.OAuthFlavorInstagram {
		return &oauth2.Config{
			ClientID:     s.cfg.InstagramClientID,
			ClientSecret: s.cfg.InstagramClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       instagramLoginScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   s.cfg.InstagramAuthorizeURL,
				TokenURL:  s.cfg.InstagramTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
	}

	return &oauth2.Config{
		ClientID:     s.cfg.FacebookAppID,
		ClientSecret: s.cfg.FacebookAppSecret,
		RedirectURL:  redirectURI,
		Scopes:       facebookLoginScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.cfg.FacebookDialogURL,
			TokenURL:  s.cfg.GraphAPIBaseURL + "/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (s *tokenService) hasCredentials(flavor string) bool {
	if flavor == models.OAuthFlavorInstagram {
		return s.cfg.HasInstagramCredentials()
	}
	return s.cfg.HasAppCredentials()
}

// normalizeFlavor maps the empty flavor to Facebook Login.
func normalizeFlavor(flavor string) (string, error) {
	switch flavor {
	case "", models.OAuthFlavorFacebook:
		return models.OAuthFlavorFacebook, nil
	case models.OAuthFlavorInstagram:
		return flavor, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFlavor, flavor)
	}
}

// AuthURL stores a fresh single-use nonce for the workspace and returns the
// dialog URL the browser should be sent to. The nonce remembers the login
// flavor, so the exchange follows the same one.
func (s *tokenService) AuthURL(ctx context.Context, workspaceID, redirectURI, flavor string) (string, error) {
	if workspaceID == "" {
		return "", ErrMissingWorkspace
	}
	flavor, err := normalizeFlavor(flavor)
	if err != nil {
		return "", err
	}
	if !s.hasCredentials(flavor) {
		return "", ErrMissingCredentials
	}
	if redirectURI == "" {
		redirectURI = s.cfg.InstagramRedirectURI
	}

	nonce, err := utils.NewNonce()
	if err != nil {
		return "", err
	}

	now := s.now()
	if err := s.st.DeleteExpired(ctx, now); err != nil {
		slog.Warn("failed to purge expired oauth states", "error", err)
	}

	err = s.st.Create(ctx, &models.OAuthState{
		Nonce:       nonce,
		WorkspaceID: workspaceID,
		RedirectURI: redirectURI,
		Flavor:      flavor,
		ExpiresAt:   now.Add(stateTTL),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	return s.oauthConfig(flavor, redirectURI).AuthCodeURL(nonce), nil
}

// Exchange turns an authorization code into a stored credential. The nonce is
// checked before any call leaves the process and the account row is written
// only after every hop succeeded.
func (s *tokenService) Exchange(ctx context.Context, req *transfer.ExchangeRequest) (*transfer.ConnectedAccount, error) {
	if req == nil || req.Code == "" {
		return nil, ErrMissingCode
	}
	if req.State == "" {
		return nil, ErrInvalidState
	}
	if !s.cfg.HasAppCredentials() && !s.cfg.HasInstagramCredentials() {
		return nil, ErrMissingCredentials
	}

	state, err := s.st.Consume(ctx, req.State)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth state: %w", err)
	}
	if state == nil || !state.ExpiresAt.After(s.now()) {
		return nil, ErrInvalidState
	}
	if req.WorkspaceID != "" && req.WorkspaceID != state.WorkspaceID {
		return nil, ErrInvalidState
	}
	if state.WorkspaceID == "" {
		return nil, ErrMissingWorkspace
	}

	flavor, err := normalizeFlavor(state.Flavor)
	if err != nil {
		return nil, err
	}
	if !s.hasCredentials(flavor) {
		return nil, ErrMissingCredentials
	}

	redirectURI := state.RedirectURI
	if redirectURI == "" {
		redirectURI = req.RedirectURI
	}
	if redirectURI == "" {
		redirectURI = s.cfg.InstagramRedirectURI
	}

	var account *models.InstagramAccount
	var token string
	if flavor == models.OAuthFlavorInstagram {
		account, token, err = s.connectInstagramLogin(ctx, req.Code, redirectURI)
	} else {
		account, token, err = s.connectFacebookLogin(ctx, req.Code, redirectURI)
	}
	if err != nil {
		return nil, err
	}

	sealedToken, err := s.cipher.Seal(token)
	if err != nil {
		return nil, err
	}

	account.WorkspaceID = state.WorkspaceID
	account.AccessToken = sealedToken
	account.TokenType = models.TokenTypeLongLived
	account.ConnectedAt = s.now()

	if _, err := s.sa.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save instagram account: %w", err)
	}

	slog.Info("instagram account connected", "workspace_id", state.WorkspaceID, "instagram_account_id", account.InstagramAccountID,
		"username", account.Username, "flavor", flavor)

	return &transfer.ConnectedAccount{
		Username:          account.Username,
		ID:                account.InstagramAccountID,
		ProfilePictureURL: account.ProfilePicture,
	}, nil
}

// connectFacebookLogin walks from a Facebook Login code to the page-scoped
// token of the first page's Instagram business account.
func (s *tokenService) connectFacebookLogin(ctx context.Context, code, redirectURI string) (*models.InstagramAccount, string, error) {
	shortLived, err := s.exchangeCode(ctx, models.OAuthFlavorFacebook, code, redirectURI)
	if err != nil {
		return nil, "", newExchangeError(StepShortLivedToken, err)
	}

	var longLived transfer.TokenResponse
	err = s.graph.Get(ctx, "/oauth/access_token", map[string]string{
		"grant_type":        "fb_exchange_token",
		"client_id":         s.cfg.FacebookAppID,
		"client_secret":     s.cfg.FacebookAppSecret,
		"fb_exchange_token": shortLived,
	}, &longLived)
	if err == nil && longLived.AccessToken == "" {
		err = errors.New("response has no access_token")
	}
	if err != nil {
		return nil, "", newExchangeError(StepLongLivedToken, err)
	}

	var pages transfer.PagesResponse
	err = s.graph.Get(ctx, "/me/accounts", map[string]string{
		"access_token": longLived.AccessToken,
	}, &pages)
	if err != nil {
		return nil, "", newExchangeError(StepPages, err)
	}
	if len(pages.Data) == 0 {
		return nil, "", newExchangeError(StepPages, ErrNoLinkedBusinessAccount)
	}
	page := pages.Data[0]

	var pageAccount transfer.PageInstagramResponse
	err = s.graph.Get(ctx, "/"+page.ID, map[string]string{
		"fields":       "instagram_business_account",
		"access_token": longLived.AccessToken,
	}, &pageAccount)
	if err != nil {
		return nil, "", newExchangeError(StepBusinessAccount, err)
	}
	if pageAccount.InstagramBusinessAccount == nil || pageAccount.InstagramBusinessAccount.ID == "" {
		return nil, "", newExchangeError(StepBusinessAccount, ErrNoInstagramBusinessAccount)
	}
	igID := pageAccount.InstagramBusinessAccount.ID

	var pageToken transfer.PageTokenResponse
	err = s.graph.Get(ctx, "/"+page.ID, map[string]string{
		"fields":       "access_token",
		"access_token": longLived.AccessToken,
	}, &pageToken)
	if err == nil && pageToken.AccessToken == "" {
		err = errors.New("failed to get page access token")
	}
	if err != nil {
		return nil, "", newExchangeError(StepPageToken, err)
	}

	var profile transfer.InstagramProfile
	err = s.graph.Get(ctx, "/"+igID, map[string]string{
		"fields":       "username,profile_picture_url,biography,followers_count,media_count",
		"access_token": pageToken.AccessToken,
	}, &profile)
	if err != nil {
		return nil, "", newExchangeError(StepProfile, err)
	}

	expiresAt := tokenExpiry(s.now(), longLived.ExpiresIn)
	return &models.InstagramAccount{
		InstagramAccountID: igID,
		FacebookPageID:     page.ID,
		Username:           profile.Username,
		ProfilePicture:     profile.ProfilePictureURL,
		Bio:                profile.Biography,
		TokenExpiresAt:     &expiresAt,
		AccountType:        models.AccountTypeBusiness,
		FollowersCount:     profile.FollowersCount,
		PostsCount:         profile.MediaCount,
	}, pageToken.AccessToken, nil
}

// connectInstagramLogin handles a code from Instagram Login. The long-lived
// user token is the one stored and later refreshed with ig_refresh_token.
func (s *tokenService) connectInstagramLogin(ctx context.Context, code, redirectURI string) (*models.InstagramAccount, string, error) {
	shortLived, err := s.exchangeCode(ctx, models.OAuthFlavorInstagram, code, redirectURI)
	if err != nil {
		return nil, "", newExchangeError(StepShortLivedToken, err)
	}

	var longLived transfer.TokenResponse
	err = s.graph.Get(ctx, s.cfg.InstagramGraphURL+"/access_token", map[string]string{
		"grant_type":    "ig_exchange_token",
		"client_secret": s.cfg.InstagramClientSecret,
		"access_token":  shortLived,
	}, &longLived)
	if err == nil && longLived.AccessToken == "" {
		err = errors.New("response has no access_token")
	}
	if err != nil {
		return nil, "", newExchangeError(StepLongLivedToken, err)
	}

	var profile transfer.InstagramProfile
	err = s.graph.Get(ctx, s.cfg.InstagramGraphURL+"/me", map[string]string{
		"fields":       "id,user_id,username,account_type,profile_picture_url,followers_count,media_count",
		"access_token": longLived.AccessToken,
	}, &profile)
	if err == nil && profile.AccountID() == "" {
		err = errors.New("profile has no id")
	}
	if err != nil {
		return nil, "", newExchangeError(StepProfile, err)
	}

	accountType := profile.AccountType
	if accountType == "" {
		accountType = models.AccountTypeBusiness
	}

	expiresAt := tokenExpiry(s.now(), longLived.ExpiresIn)
	return &models.InstagramAccount{
		InstagramAccountID: profile.AccountID(),
		Username:           profile.Username,
		ProfilePicture:     profile.ProfilePictureURL,
		TokenExpiresAt:     &expiresAt,
		AccountType:        accountType,
		FollowersCount:     profile.FollowersCount,
		PostsCount:         profile.MediaCount,
	}, longLived.AccessToken, nil
}

func (s *tokenService) exchangeCode(ctx context.Context, flavor, code, redirectURI string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http)

	token, err := s.oauthConfig(flavor, redirectURI).Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", retrieveErrorToGraph(retrieveErr)
		}
		return "", err
	}

	return token.AccessToken, nil
}

func retrieveErrorToGraph(re *oauth2.RetrieveError) error {
	apiErr := &GraphAPIError{Body: string(re.Body)}
	if re.Response != nil {
		apiErr.StatusCode = re.Response.StatusCode
	}

	var errResp transfer.GraphErrorResponse
	if jsonErr := json.Unmarshal(re.Body, &errResp); jsonErr == nil && errResp.Error != nil {
		apiErr.Payload = errResp.Error
	}
	return apiErr
}

// RefreshToken extends the account's long-lived token and stores the new one.
// The row is left untouched when any step fails.
func (s *tokenService) RefreshToken(ctx context.Context, acc *models.InstagramAccount) (time.Time, error) {
	if acc.AccessToken == "" {
		return time.Time{}, ErrMissingToken
	}

	current, err := s.cipher.Open(acc.AccessToken)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open stored token: %w", err)
	}

	var result transfer.TokenResponse
	err = s.graph.Get(ctx, s.cfg.InstagramRefreshURL, map[string]string{
		"grant_type":   "ig_refresh_token",
		"access_token": current,
	}, &result)
	if err != nil {
		return time.Time{}, err
	}
	if result.AccessToken == "" {
		return time.Time{}, errors.New("refresh response has no access_token")
	}

	expiresAt := tokenExpiry(s.now(), result.ExpiresIn)

	sealed, err := s.cipher.Seal(result.AccessToken)
	if err != nil {
		return time.Time{}, err
	}

	if err := s.sa.SetToken(ctx, acc.ID, sealed, expiresAt); err != nil {
		return time.Time{}, fmt.Errorf("failed to store refreshed token for account %d: %w", acc.ID, err)
	}

	return expiresAt, nil
}
