package authjwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRoundTrip(t *testing.T) {
	p := NewProvider("test-secret")

	token, err := p.GenerateToken("user-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := p.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity)
}

func TestProviderRejectsExpired(t *testing.T) {
	p := NewProvider("test-secret")

	token, err := p.GenerateToken("user-123", -time.Minute)
	require.NoError(t, err)

	_, err = p.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestProviderRejectsWrongSecret(t *testing.T) {
	p := NewProvider("test-secret")
	other := NewProvider("other-secret")

	token, err := p.GenerateToken("user-123", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestProviderRejectsGarbage(t *testing.T) {
	p := NewProvider("test-secret")

	_, err := p.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
