package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret-key-0123456789abcdef", time.Minute)

	hash, err := svc.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, svc.CompareHashAndPassword(hash, "correct horse battery staple"))
	assert.Error(t, svc.CompareHashAndPassword(hash, "wrong password"))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret-key-0123456789abcdef", time.Minute)

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
}

func TestTokenRejectedWithWrongSecret(t *testing.T) {
	issuer := NewAuthService("issuer-secret-0123456789abcdef", time.Minute)
	verifier := NewAuthService("another-secret-0123456789abcdef", time.Minute)

	token, err := issuer.GenerateToken("42")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewAuthService("test-secret-key-0123456789abcdef", -time.Minute)

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewAuthService("test-secret-key-0123456789abcdef", time.Minute)

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestRefreshTokensAreOpaqueAndUnique(t *testing.T) {
	svc := NewAuthService("test-secret-key-0123456789abcdef", time.Minute)

	a, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	// opaque tokens carry no claims, so validating one as a JWT must fail
	_, err = svc.ValidateToken(a)
	assert.Error(t, err)
}
