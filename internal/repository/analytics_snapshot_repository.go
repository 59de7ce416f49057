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

type AnalyticsSnapshotRepository interface {
	Upsert(ctx context.Context, s *models.AnalyticsSnapshot) error
	LatestFollowersCount(ctx context.Context, accountID int64) (int64, error)
	ListSince(ctx context.Context, accountID int64, since time.Time) ([]*models.AnalyticsSnapshot, error)
}

type analyticsSnapshotRepository struct {
	db *sql.DB
}

func NewAnalyticsSnapshotRepository(db *sql.DB) AnalyticsSnapshotRepository {
	return &analyticsSnapshotRepository{db: db}
}

// Upsert writes the snapshot of one account for one day. A rerun on the same
// day overwrites the earlier values.
func (r *analyticsSnapshotRepository) Upsert(ctx context.Context, s *models.AnalyticsSnapshot) error {
	query, args, err := SqBuilder.
		Insert("analytics_snapshots").
		Columns("instagram_account_id", "snapshot_date", "followers_count", "posts_count", "total_likes", "total_comments", "engagement_rate").
		Values(s.InstagramAccountID, s.SnapshotDate, s.FollowersCount, s.PostsCount, s.TotalLikes, s.TotalComments, s.EngagementRate).
		Suffix(`ON CONFLICT (instagram_account_id, snapshot_date) DO UPDATE SET
			followers_count = EXCLUDED.followers_count,
			posts_count = EXCLUDED.posts_count,
			total_likes = EXCLUDED.total_likes,
			total_comments = EXCLUDED.total_comments,
			engagement_rate = EXCLUDED.engagement_rate`).
		ToSql()
	if err != nil {
		return ErrBadQuery
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// LatestFollowersCount returns zero when the account has no snapshot yet.
func (r *analyticsSnapshotRepository) LatestFollowersCount(ctx context.Context, accountID int64) (int64, error) {
	query, args, err := SqBuilder.
		Select("followers_count").
		From("analytics_snapshots").
		Where(sq.Eq{"instagram_account_id": accountID}).
		OrderBy("snapshot_date DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, ErrBadQuery
	}

	var followers int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&followers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		slog.Info(err.Error())
		return 0, err
	}

	return followers, nil
}

func (r *analyticsSnapshotRepository) ListSince(ctx context.Context, accountID int64, since time.Time) ([]*models.AnalyticsSnapshot, error) {
	query, args, err := SqBuilder.
		Select("id", "instagram_account_id", "snapshot_date", "followers_count", "posts_count", "total_likes", "total_comments", "engagement_rate", "created_at").
		From("analytics_snapshots").
		Where(sq.Eq{"instagram_account_id": accountID}).
		Where(sq.GtOrEq{"snapshot_date": since}).
		OrderBy("snapshot_date DESC").
		ToSql()
	if err != nil {
		return nil, ErrBadQuery
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.AnalyticsSnapshot
	for rows.Next() {
		var s models.AnalyticsSnapshot
		err := rows.Scan(&s.ID, &s.InstagramAccountID, &s.SnapshotDate, &s.FollowersCount, &s.PostsCount,
			&s.TotalLikes, &s.TotalComments, &s.EngagementRate, &s.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		snapshots = append(snapshots, &s)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return snapshots, nil
}
