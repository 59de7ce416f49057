package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/instaflow/internal/models"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) (int64, error)
}

type alertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) (int64, error) {
	query, args, err := SqBuilder.
		Insert("alerts").
		Columns("workspace_id", "instagram_account_id", "type", "message").
		Values(alert.WorkspaceID, alert.InstagramAccountID, alert.Type, alert.Message).
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
