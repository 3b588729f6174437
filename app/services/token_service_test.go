// Package services provides external service integrations and technical concerns like tokens and caching
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) TokenService {
	t.Helper()
	service, err := NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"test-issuer",
		"test-audience",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)
	return service
}

func TestNewTokenService(t *testing.T) {
	t.Run("SymmetricKey", func(t *testing.T) {
		service := newTestTokenService(t)
		assert.NotNil(t, service)
	})

	t.Run("MissingSecretKey", func(t *testing.T) {
		service, err := NewTokenService(15*time.Minute, 7*24*time.Hour,
			"test-issuer", "test-audience", false, "", "", "")
		assert.Error(t, err)
		assert.Nil(t, service)
	})

	t.Run("RSAWithoutKeys", func(t *testing.T) {
		service, err := NewTokenService(15*time.Minute, 7*24*time.Hour,
			"test-issuer", "test-audience", true, "", "", "")
		assert.Error(t, err)
		assert.Nil(t, service)
	})
}

func TestGenerateAndValidateTokens(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, refreshToken, err := service.GenerateTokens(123)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	t.Run("AccessTokenClaims", func(t *testing.T) {
		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(123), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("RefreshTokenClaims", func(t *testing.T) {
		claims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(123), claims.UserID)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("MalformedTokenRejected", func(t *testing.T) {
		for _, token := range []string{"", "not a jwt", "a.b.c"} {
			claims, err := service.ValidateToken(token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		}
	})
}

func TestRefreshToken(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, refreshToken, err := service.GenerateTokens(123)
	require.NoError(t, err)

	t.Run("RotatesTokens", func(t *testing.T) {
		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, newAccess)
		assert.NotEmpty(t, newRefresh)
		assert.NotEqual(t, refreshToken, newRefresh)
	})

	t.Run("AccessTokenRejected", func(t *testing.T) {
		_, _, err := service.RefreshToken(accessToken)
		assert.Error(t, err)
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		_, _, err := service.RefreshToken("invalid.token")
		assert.Error(t, err)
	})
}

func TestRevokeToken(t *testing.T) {
	service := newTestTokenService(t)

	accessToken, _, err := service.GenerateTokens(123)
	require.NoError(t, err)

	require.NoError(t, service.RevokeToken(accessToken))

	claims, err := service.ValidateToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.Nil(t, claims)
	assert.True(t, service.IsTokenRevoked(accessToken))

	assert.Error(t, service.RevokeToken("invalid.token"))
}

func TestTokenExpiration(t *testing.T) {
	service, err := NewTokenService(1*time.Second, 2*time.Second,
		"test-issuer", "test-audience", false, "", "",
		"test-secret-key-for-jwt-signing-32-chars")
	require.NoError(t, err)

	accessToken, refreshToken, err := service.GenerateTokens(123)
	require.NoError(t, err)

	claims, err := service.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(123), claims.UserID)

	time.Sleep(3 * time.Second)

	_, err = service.ValidateToken(accessToken)
	assert.Error(t, err)
	_, _, err = service.RefreshToken(refreshToken)
	assert.Error(t, err)
}

func TestTokensAreKeyBound(t *testing.T) {
	service1, err := NewTokenService(15*time.Minute, 7*24*time.Hour,
		"issuer1", "audience1", false, "", "", "test-secret-key-1-for-jwt-signing")
	require.NoError(t, err)
	service2, err := NewTokenService(15*time.Minute, 7*24*time.Hour,
		"issuer2", "audience2", false, "", "", "test-secret-key-2-for-jwt-signing")
	require.NoError(t, err)

	token1, _, err := service1.GenerateTokens(123)
	require.NoError(t, err)

	claims, err := service2.ValidateToken(token1)
	assert.Error(t, err)
	assert.Nil(t, claims)
}
