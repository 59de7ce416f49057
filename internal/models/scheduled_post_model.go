package models

import "time"

type ScheduledPost struct {
	ID                 int64      `db:"id" json:"id"`
	InstagramAccountID int64      `db:"instagram_account_id" json:"instagram_account_id"`
	MediaType          string     `db:"media_type" json:"media_type"`
	MediaURLs          []string   `db:"media_urls" json:"media_urls"`
	Caption            string     `db:"caption" json:"caption"`
	Hashtags           []string   `db:"hashtags" json:"hashtags"`
	ScheduledAt        time.Time  `db:"scheduled_at" json:"scheduled_at"`
	Status             string     `db:"status" json:"status"` // scheduled, processing, published, failed
	PublishedAt        *time.Time `db:"published_at" json:"published_at"`
	ExternalPostID     string     `db:"external_post_id" json:"external_post_id"`
	ErrorMessage       string     `db:"error_message" json:"error_message"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusScheduled  = "scheduled"
	PostStatusProcessing = "processing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)

const (
	MediaTypeImage    = "image"
	MediaTypeVideo    = "video"
	MediaTypeCarousel = "carousel"
)
