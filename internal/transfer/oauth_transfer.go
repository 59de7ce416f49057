package transfer

type ExchangeRequest struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	WorkspaceID string `json:"workspace_id"`
	RedirectURI string `json:"redirect_uri"`
}

type ConnectedAccount struct {
	Username          string `json:"username"`
	ID                string `json:"id"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type ExchangeResponse struct {
	Success bool              `json:"success"`
	Account *ConnectedAccount `json:"account"`
}
