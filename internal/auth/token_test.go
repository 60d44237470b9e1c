package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890"

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager(testSecret, "folio", time.Hour)

	raw, issued, err := m.Issue(Identity{Email: " Reader@Example.com ", Name: "Reader"})
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", claims.Subject)
	assert.Equal(t, "Reader", claims.Name)
	assert.Equal(t, issued.ID, claims.ID)

	s := SessionFromClaims(claims)
	assert.Equal(t, "reader@example.com", s.Email)
	assert.Nil(t, s.UserID)
}

func TestTokenManager_RejectsBadTokens(t *testing.T) {
	m := NewTokenManager(testSecret, "folio", time.Hour)
	other := NewTokenManager("another-secret-key-1234567890", "folio", time.Hour)
	foreign := NewTokenManager(testSecret, "someone-else", time.Hour)

	expired := NewTokenManager(testSecret, "folio", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	sign := func(mgr *TokenManager) string {
		raw, _, err := mgr.Issue(Identity{Email: "reader@example.com"})
		require.NoError(t, err)
		return raw
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "reader@example.com"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret":   sign(other),
		"wrong issuer":   sign(foreign),
		"expired":        sign(expired),
		"none algorithm": unsigned,
		"garbage":        "not-a-token",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenManager_IssueRequiresEmail(t *testing.T) {
	m := NewTokenManager(testSecret, "folio", time.Hour)
	_, _, err := m.Issue(Identity{Name: "No Email"})
	assert.Error(t, err)
}

func TestRedisRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := NewRedisRevoker(rdb)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.TTL("session:revoked:jti-1") > 0)
}

func TestRedisRevoker_NilClient(t *testing.T) {
	r := NewRedisRevoker(nil)

	revoked, err := r.IsRevoked(context.Background(), "jti")
	assert.NoError(t, err)
	assert.False(t, revoked)
	assert.ErrorIs(t, r.Revoke(context.Background(), "jti", time.Now().Add(time.Hour)), ErrRevocationUnavailable)
}
