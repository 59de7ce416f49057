package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/instaflow/internal/models"
)

type InstagramAccountRepository interface {
	Upsert(ctx context.Context, acc *models.InstagramAccount) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.InstagramAccount, error)
	ListAll(ctx context.Context) ([]*models.InstagramAccount, error)
	ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.InstagramAccount, error)
	SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error
}

var ErrAccountNotUpdated = errors.New("no rows affected; account may not exist")

type instagramAccountRepository struct {
	db *sql.DB
}

func NewInstagramAccountRepository(db *sql.DB) InstagramAccountRepository {
	return &instagramAccountRepository{db: db}
}

func (r *instagramAccountRepository) Upsert(ctx context.Context, acc *models.InstagramAccount) (int64, error) {
	query := `
		INSERT INTO instagram_accounts (
			workspace_id,
			instagram_account_id,
			facebook_page_id,
			username,
			profile_picture_url,
			bio,
			access_token,
			token_expires_at,
			token_type,
			account_type,
			followers_count,
			posts_count,
			connected_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (workspace_id, instagram_account_id) DO UPDATE SET
			facebook_page_id = EXCLUDED.facebook_page_id,
			username = EXCLUDED.username,
			profile_picture_url = EXCLUDED.profile_picture_url,
			bio = EXCLUDED.bio,
			access_token = EXCLUDED.access_token,
			token_expires_at = EXCLUDED.token_expires_at,
			token_type = EXCLUDED.token_type,
			account_type = EXCLUDED.account_type,
			followers_count = EXCLUDED.followers_count,
			posts_count = EXCLUDED.posts_count,
			connected_at = EXCLUDED.connected_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		acc.WorkspaceID,
		acc.InstagramAccountID,
		acc.FacebookPageID,
		acc.Username,
		acc.ProfilePicture,
		acc.Bio,
		acc.AccessToken,
		acc.TokenExpiresAt,
		acc.TokenType,
		acc.AccountType,
		acc.FollowersCount,
		acc.PostsCount,
		acc.ConnectedAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *instagramAccountRepository) GetByID(ctx context.Context, id int64) (*models.InstagramAccount, error) {
	query := `
		SELECT id, workspace_id, instagram_account_id, facebook_page_id, username,
			profile_picture_url, bio, access_token, token_expires_at, token_type,
			account_type, followers_count, posts_count, connected_at, created_at, updated_at
		FROM instagram_accounts WHERE id = $1`

	var acc models.InstagramAccount
	var token sql.NullString
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(&acc.ID, &acc.WorkspaceID, &acc.InstagramAccountID,
		&acc.FacebookPageID, &acc.Username, &acc.ProfilePicture, &acc.Bio, &token, &expiresAt,
		&acc.TokenType, &acc.AccountType, &acc.FollowersCount, &acc.PostsCount, &acc.ConnectedAt,
		&acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	acc.AccessToken = token.String
	acc.TokenExpiresAt = nullTimePtr(expiresAt)
	return &acc, nil
}

func (r *instagramAccountRepository) ListAll(ctx context.Context) ([]*models.InstagramAccount, error) {
	query := `
		SELECT id, workspace_id, instagram_account_id, facebook_page_id, username, access_token,
			token_expires_at, followers_count
		FROM instagram_accounts
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.InstagramAccount
	for rows.Next() {
		var acc models.InstagramAccount
		var token sql.NullString
		var expiresAt sql.NullTime
		if err := rows.Scan(&acc.ID, &acc.WorkspaceID, &acc.InstagramAccountID, &acc.FacebookPageID, &acc.Username,
			&token, &expiresAt, &acc.FollowersCount); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		acc.AccessToken = token.String
		acc.TokenExpiresAt = nullTimePtr(expiresAt)
		accounts = append(accounts, &acc)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

// ListExpiringBefore returns accounts holding a token that expires before the
// deadline. Accounts without a token or without an expiry are never returned.
func (r *instagramAccountRepository) ListExpiringBefore(ctx context.Context, deadline time.Time) ([]*models.InstagramAccount, error) {
	query := `
		SELECT id, workspace_id, username, access_token, token_expires_at
		FROM instagram_accounts
		WHERE access_token IS NOT NULL
			AND token_expires_at < $1
		ORDER BY token_expires_at`

	rows, err := r.db.QueryContext(ctx, query, deadline)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.InstagramAccount
	for rows.Next() {
		var acc models.InstagramAccount
		var expiresAt sql.NullTime
		if err := rows.Scan(&acc.ID, &acc.WorkspaceID, &acc.Username, &acc.AccessToken, &expiresAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		acc.TokenExpiresAt = nullTimePtr(expiresAt)
		accounts = append(accounts, &acc)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *instagramAccountRepository) SetToken(ctx context.Context, id int64, accessToken string, expiresAt time.Time) error {
	query := `
		UPDATE instagram_accounts
		SET
			access_token = $2,
			token_expires_at = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, accessToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrAccountNotUpdated
	}

	return nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
