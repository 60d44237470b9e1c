package auth

import (
	"context"
	"errors"
	"time"

	"folio/internal/cache"

	"github.com/redis/go-redis/v9"
)

// ErrRevocationUnavailable is returned when no revocation store is configured.
var ErrRevocationUnavailable = errors.New("token revocation store unavailable")

// Revoker records signed-out token ids until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevoker keeps revoked ids as expiring Redis keys.
type RedisRevoker struct {
	rdb *redis.Client
}

// NewRedisRevoker returns a revoker backed by rdb, which may be nil.
func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: rdb}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if r.rdb == nil {
		return ErrRevocationUnavailable
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, cache.RevokedTokenKey(jti), "1", ttl).Err()
}

// IsRevoked reports false when no store is configured.
func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r.rdb == nil {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, cache.RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
