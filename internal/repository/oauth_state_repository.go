package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
)

type OAuthStateRepository interface {
	Create(ctx context.Context, state *models.OAuthState) error
	Consume(ctx context.Context, nonce string) (*models.OAuthState, error)
	DeleteExpired(ctx context.Context, now time.Time) error
}

type oauthStateRepository struct {
	db *sql.DB
}

func NewOAuthStateRepository(db *sql.DB) OAuthStateRepository {
	return &oauthStateRepository{db: db}
}

func (r *oauthStateRepository) Create(ctx context.Context, state *models.OAuthState) error {
	query := `
		INSERT INTO oauth_states (nonce, workspace_id, redirect_uri, flavor, expires_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, state.Nonce, state.WorkspaceID, state.RedirectURI, state.Flavor, state.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Consume deletes the nonce and returns what was stored with it, so a nonce
// can be redeemed at most once. It returns nil when the nonce is unknown.
func (r *oauthStateRepository) Consume(ctx context.Context, nonce string) (*models.OAuthState, error) {
	query := `
		DELETE FROM oauth_states
		WHERE nonce = $1
		RETURNING nonce, workspace_id, redirect_uri, flavor, expires_at, created_at`

	var state models.OAuthState
	err := r.db.QueryRowContext(ctx, query, nonce).Scan(&state.Nonce, &state.WorkspaceID, &state.RedirectURI, &state.Flavor,
		&state.ExpiresAt, &state.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &state, nil
}

func (r *oauthStateRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_states WHERE expires_at < $1`, now)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
