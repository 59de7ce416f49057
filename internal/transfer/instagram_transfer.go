package transfer

import (
	"encoding/json"
	"fmt"
)

// GraphError is the error object returned by the Facebook and Instagram Graph APIs.
type GraphError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	IsTransient  bool   `json:"is_transient"`
	FbtraceID    string `json:"fbtrace_id"`
}

func (e *GraphError) String() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s (type=%s code=%d)", e.Message, e.Type, e.Code)
}

type GraphErrorResponse struct {
	Error *GraphError `json:"error"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type PagesResponse struct {
	Data []Page `json:"data"`
}

type InstagramBusinessAccount struct {
	ID string `json:"id"`
}

type PageInstagramResponse struct {
	ID                       string                    `json:"id"`
	InstagramBusinessAccount *InstagramBusinessAccount `json:"instagram_business_account"`
}

type PageTokenResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
}

type InstagramProfile struct {
	ID                string      `json:"id"`
	UserID            json.Number `json:"user_id"`
	Username          string      `json:"username"`
	AccountType       string      `json:"account_type"`
	ProfilePictureURL string      `json:"profile_picture_url"`
	Biography         string      `json:"biography"`
	FollowersCount    int64       `json:"followers_count"`
	MediaCount        int64       `json:"media_count"`
}

// AccountID is the professional account id used for publishing. Instagram
// Login reports it as user_id next to an app-scoped id.
func (p *InstagramProfile) AccountID() string {
	if p.UserID != "" {
		return p.UserID.String()
	}
	return p.ID
}

type MediaContainerResponse struct {
	ID string `json:"id"`
}

type ContainerStatusResponse struct {
	ID         string `json:"id"`
	StatusCode string `json:"status_code"`
}

const (
	ContainerStatusFinished   = "FINISHED"
	ContainerStatusInProgress = "IN_PROGRESS"
	ContainerStatusError      = "ERROR"
	ContainerStatusExpired    = "EXPIRED"
)
