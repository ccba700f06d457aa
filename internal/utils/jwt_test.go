package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	tok, err := NewAccessToken(secret, 42, "CLIENT", 15)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "CLIENT", claims["role"])
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("right-secret", 1, "OPERATOR", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	})
	assert.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(30)
	require.NoError(t, err)
	b, err := NewRefreshToken(30)
	require.NoError(t, err)

	assert.Len(t, a.Raw, 96) // 48 random bytes hex encoded
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.WithinDuration(t, time.Now().UTC().Add(30*24*time.Hour), a.Exp, 5*time.Second)
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("some-token")
	h2 := HashRefreshRaw("some-token")
	h3 := HashRefreshRaw("other-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // sha256 hex digest
	assert.NotContains(t, h1, "some-token")
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret"))
}
