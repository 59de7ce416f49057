package models

import "time"

type OAuthState struct {
	Nonce       string    `db:"nonce" json:"nonce"`
	WorkspaceID string    `db:"workspace_id" json:"workspace_id"`
	RedirectURI string    `db:"redirect_uri" json:"redirect_uri"`
	Flavor      string    `db:"flavor" json:"flavor"`
	ExpiresAt   time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Login flavors. Facebook Login connects through a page; Instagram Login
// connects the professional account directly.
const (
	OAuthFlavorFacebook  = "facebook"
	OAuthFlavorInstagram = "instagram"
)
