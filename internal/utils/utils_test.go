package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	BurnCompare("anything")
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("k", "sid-1", time.Hour)
	require.NoError(t, err)
	sid, err := ParseSessionToken("k", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)

	_, err = ParseSessionToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewSessionToken("k", "sid-2", -time.Minute)
	require.NoError(t, err)
	_, err = ParseSessionToken("k", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRandomHex(t *testing.T) {
	s, err := RandomHex(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
}
