package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/models"
)

func TestAuthService_Passwords(t *testing.T) {
	svc := NewAuthService("secret", time.Hour, "taskhub")

	hash, err := svc.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, svc.CheckPassword(hash, "secret1"))
	assert.False(t, svc.CheckPassword(hash, "secret2"))
	assert.False(t, svc.CheckPassword("", "secret1"))
}

func TestAuthService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("secret", time.Hour, "taskhub")
	user := &models.User{ID: 7, Role: models.RoleAdmin}

	token, issued, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "taskhub", claims.Issuer)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	svc := NewAuthService("secret", time.Hour, "taskhub").(*authService)
	user := &models.User{ID: 7, Role: models.RoleUser}

	t.Run("expired beyond leeway", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := svc.IssueAccessToken(user)
		require.NoError(t, err)
		svc.now = time.Now

		_, err = svc.ParseAccessToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewAuthService("different", time.Hour, "taskhub")
		token, _, err := other.IssueAccessToken(user)
		require.NoError(t, err)

		_, err = svc.ParseAccessToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := Claims{UserID: 7, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ParseAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := Claims{UserID: 7}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.ParseAccessToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenRequiredClaimMissing)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ParseAccessToken("not.a.jwt")
		assert.Error(t, err)
	})
}
