package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const nonceLength = 32

// NewNonce returns a URL-safe random string for the OAuth state parameter.
func NewNonce() (string, error) {
	return gonanoid.New(nonceLength)
}

// NewRunID tags the log lines of a single job invocation.
func NewRunID(prefix string) string {
	id, err := gonanoid.New(12)
	if err != nil {
		return prefix
	}
	return prefix + "-" + id
}
