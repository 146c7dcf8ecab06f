package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	expires := time.Now().Add(time.Hour).Unix()
	token, err := TokenNew("test-key", 42, expires, TokenAccess)
	require.NoError(t, err)

	userID, tokenType, err := TokenCheck(token, "test-key")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, TokenAccess, tokenType)
}

func TestTokenWrongKey(t *testing.T) {
	expires := time.Now().Add(time.Hour).Unix()
	token, err := TokenNew("test-key", 42, expires, TokenAccess)
	require.NoError(t, err)

	_, _, err = TokenCheck(token, "other-key")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	expires := time.Now().Add(-time.Hour).Unix()
	token, err := TokenNew("test-key", 42, expires, TokenAccess)
	require.NoError(t, err)

	_, _, err = TokenCheck(token, "test-key")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, ComparePasswords(hash, "correct horse battery staple"))
	assert.False(t, ComparePasswords(hash, "wrong password"))
}
