package models

import "time"

// PostPerformance is written once when a post is published and never updated.
type PostPerformance struct {
	ID                 int64     `db:"id" json:"id"`
	InstagramAccountID int64     `db:"instagram_account_id" json:"instagram_account_id"`
	ExternalPostID     string    `db:"external_post_id" json:"external_post_id"`
	PostedAt           time.Time `db:"posted_at" json:"posted_at"`
	Likes              int64     `db:"likes" json:"likes"`
	Comments           int64     `db:"comments" json:"comments"`
	Reach              int64     `db:"reach" json:"reach"`
	Saves              int64     `db:"saves" json:"saves"`
	EngagementRate     float64   `db:"engagement_rate" json:"engagement_rate"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

type PerformanceTotals struct {
	Likes      int64
	Comments   int64
	PostsCount int64
}
