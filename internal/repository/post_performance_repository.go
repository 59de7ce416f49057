package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/maheshrc27/instaflow/internal/models"
)

type PostPerformanceRepository interface {
	Create(ctx context.Context, pp *models.PostPerformance) (int64, error)
	TotalsSince(ctx context.Context, accountID int64, since time.Time) (*models.PerformanceTotals, error)
	ExistsSince(ctx context.Context, accountID int64, since time.Time) (bool, error)
}

type postPerformanceRepository struct {
	db *sql.DB
}

func NewPostPerformanceRepository(db *sql.DB) PostPerformanceRepository {
	return &postPerformanceRepository{db: db}
}

func (r *postPerformanceRepository) Create(ctx context.Context, pp *models.PostPerformance) (int64, error) {
	query, args, err := SqBuilder.
		Insert("post_performances").
		Columns("instagram_account_id", "external_post_id", "posted_at", "likes", "comments", "reach", "saves", "engagement_rate").
		Values(pp.InstagramAccountID, pp.ExternalPostID, pp.PostedAt, pp.Likes, pp.Comments, pp.Reach, pp.Saves, pp.EngagementRate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, ErrBadQuery
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

// TotalsSince sums likes and comments of the posts published at or after since.
func (r *postPerformanceRepository) TotalsSince(ctx context.Context, accountID int64, since time.Time) (*models.PerformanceTotals, error) {
	query, args, err := SqBuilder.
		Select("COALESCE(SUM(likes), 0)", "COALESCE(SUM(comments), 0)", "COUNT(*)").
		From("post_performances").
		Where(sq.Eq{"instagram_account_id": accountID}).
		Where(sq.GtOrEq{"posted_at": since}).
		ToSql()
	if err != nil {
		return nil, ErrBadQuery
	}

	var totals models.PerformanceTotals
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&totals.Likes, &totals.Comments, &totals.PostsCount)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &totals, nil
}

func (r *postPerformanceRepository) ExistsSince(ctx context.Context, accountID int64, since time.Time) (bool, error) {
	query, args, err := SqBuilder.
		Select("1").
		From("post_performances").
		Where(sq.Eq{"instagram_account_id": accountID}).
		Where(sq.GtOrEq{"posted_at": since}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, ErrBadQuery
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return true, nil
}
