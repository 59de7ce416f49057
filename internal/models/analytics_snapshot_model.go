package models

import "time"

type AnalyticsSnapshot struct {
	ID                 int64     `db:"id" json:"id"`
	InstagramAccountID int64     `db:"instagram_account_id" json:"instagram_account_id"`
	SnapshotDate       time.Time `db:"snapshot_date" json:"snapshot_date"`
	FollowersCount     int64     `db:"followers_count" json:"followers_count"`
	PostsCount         int64     `db:"posts_count" json:"posts_count"`
	TotalLikes         int64     `db:"total_likes" json:"total_likes"`
	TotalComments      int64     `db:"total_comments" json:"total_comments"`
	EngagementRate     float64   `db:"engagement_rate" json:"engagement_rate"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
