package models

import "time"

type Alert struct {
	ID                 int64     `db:"id" json:"id"`
	WorkspaceID        string    `db:"workspace_id" json:"workspace_id"`
	InstagramAccountID *int64    `db:"instagram_account_id" json:"instagram_account_id"`
	Type               string    `db:"type" json:"type"`
	Message            string    `db:"message" json:"message"`
	IsRead             bool      `db:"is_read" json:"is_read"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

const (
	AlertTypeEngagementDrop = "engagement_drop"
	AlertTypePostingLow     = "posting_low"
	AlertTypeGrowthSpike    = "growth_spike"
)
