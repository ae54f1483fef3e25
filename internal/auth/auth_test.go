package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, accessTTL time.Duration) *AuthService {
	t.Helper()
	privatePEM, publicPEM, err := GenerateKeyPairPEM(DefaultKeyBits)
	require.NoError(t, err)

	svc, err := NewAuthService(privatePEM, publicPEM, accessTTL, time.Hour)
	require.NoError(t, err)
	return svc
}

func TestTokenPairRoundTrip(t *testing.T) {
	svc := newTestService(t, time.Minute)

	pair, err := svc.GenerateTokenPair(42, true)
	require.NoError(t, err)

	access, err := svc.ValidateTokenOfType(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.True(t, access.MustChangePassword)

	refresh, err := svc.ValidateTokenOfType(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, refresh.ID)

	_, err = svc.ValidateTokenOfType(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	svc := newTestService(t, -time.Minute)
	pair, err := svc.GenerateTokenPair(1, false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))

	pw, err := GenerateRandomPassword(0)
	require.NoError(t, err)
	assert.Len(t, pw, 32)
}
