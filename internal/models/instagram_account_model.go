package models

import (
	"time"
)

type InstagramAccount struct {
	ID                 int64      `db:"id" json:"id"`
	WorkspaceID        string     `db:"workspace_id" json:"workspace_id"`
	InstagramAccountID string     `db:"instagram_account_id" json:"instagram_account_id"`
	FacebookPageID     string     `db:"facebook_page_id" json:"facebook_page_id"`
	Username           string     `db:"username" json:"username"`
	ProfilePicture     string     `db:"profile_picture_url" json:"profile_picture_url"`
	Bio                string     `db:"bio" json:"bio"`
	AccessToken        string     `db:"access_token" json:"-"`
	TokenExpiresAt     *time.Time `db:"token_expires_at" json:"token_expires_at"`
	TokenType          string     `db:"token_type" json:"token_type"`
	AccountType        string     `db:"account_type" json:"account_type"`
	FollowersCount     int64      `db:"followers_count" json:"followers_count"`
	PostsCount         int64      `db:"posts_count" json:"posts_count"`
	ConnectedAt        time.Time  `db:"connected_at" json:"connected_at"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	TokenTypeLongLived   = "LONG_LIVED"
	AccountTypeBusiness  = "Business"
	DefaultTokenLifetime = 60 * 24 * time.Hour
)

// ConnectedWithInstagramLogin reports whether the token came from Instagram
// Login. Those accounts have no Facebook page and talk to graph.instagram.com.
func (a *InstagramAccount) ConnectedWithInstagramLogin() bool {
	return a.FacebookPageID == ""
}
