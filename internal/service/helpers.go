package service

import (
	"time"
)

// tokenExpiry turns a lifetime in seconds into an absolute expiry. A missing
// lifetime falls back to the long-lived default.
func tokenExpiry(now time.Time, expiresIn int64) time.Time {
	if expiresIn <= 0 {
		expiresIn = defaultTokenLifetime
	}
	return now.Add(time.Duration(expiresIn) * time.Second)
}
