package service

import (
	"errors"
	"fmt"

	"github.com/maheshrc27/instaflow/internal/transfer"
)

var (
	ErrMissingCode                = errors.New("authorization code is required")
	ErrMissingWorkspace           = errors.New("workspace id is required")
	ErrMissingCredentials         = errors.New("instagram api credentials are not configured")
	ErrInvalidState               = errors.New("oauth state is invalid or expired")
	ErrUnknownFlavor              = errors.New("unknown login flavor")
	ErrNoLinkedBusinessAccount    = errors.New("no facebook pages found; connect a facebook page to your instagram account")
	ErrNoInstagramBusinessAccount = errors.New("no instagram business account found; convert the account to business or creator and link it to a facebook page")
	ErrMissingToken               = errors.New("account has no access token")
	ErrTokenExpired               = errors.New("account access token has expired")
	ErrNoMedia                    = errors.New("post has no media")
	ErrAccountNotFound            = errors.New("instagram account not found")
)

// GraphAPIError is a non-successful answer from the Graph API.
type GraphAPIError struct {
	StatusCode int
	Payload    *transfer.GraphError
	Body       string
}

func (e *GraphAPIError) Error() string {
	if e.Payload != nil {
		return fmt.Sprintf("graph api error (status %d): %s", e.StatusCode, e.Payload.String())
	}
	return fmt.Sprintf("graph api error (status %d): %s", e.StatusCode, e.Body)
}

// OAuthExchangeError reports which step of the token exchange chain failed,
// together with the payload the platform returned.
type OAuthExchangeError struct {
	Step       string
	StatusCode int
	Payload    *transfer.GraphError
	Err        error
}

func (e *OAuthExchangeError) Error() string {
	return fmt.Sprintf("oauth exchange failed at %s: %v", e.Step, e.Err)
}

func (e *OAuthExchangeError) Unwrap() error {
	return e.Err
}

func newExchangeError(step string, err error) *OAuthExchangeError {
	exErr := &OAuthExchangeError{Step: step, Err: err}

	var apiErr *GraphAPIError
	if errors.As(err, &apiErr) {
		exErr.StatusCode = apiErr.StatusCode
		exErr.Payload = apiErr.Payload
	}
	return exErr
}

// IsInputError reports whether err was caused by the caller rather than by
// the platform or the store.
func IsInputError(err error) bool {
	var exErr *OAuthExchangeError
	return errors.Is(err, ErrMissingCode) ||
		errors.Is(err, ErrMissingWorkspace) ||
		errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrUnknownFlavor) ||
		errors.As(err, &exErr)
}
