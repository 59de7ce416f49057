package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceToken(t *testing.T) {
	token, err := GenerateServiceToken("secret", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateServiceToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "service_role", claims.Role)

	_, err = ValidateServiceToken("other-secret", token)
	assert.Error(t, err)
}

func TestServiceToken_Expired(t *testing.T) {
	token, err := GenerateServiceToken("secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateServiceToken("secret", token)
	assert.Error(t, err)
}

func TestNewNonce(t *testing.T) {
	a, err := NewNonce()
	require.NoError(t, err)
	b, err := NewNonce()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
