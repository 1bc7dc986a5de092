package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denyKeyPrefix = "auth:revoked:"

// TokenDenylist remembers revoked access-token ids until the token would
// have expired anyway. A nil *TokenDenylist revokes nothing.
type TokenDenylist struct {
	rdb redis.Cmdable
	now func() time.Time
}

// NewTokenDenylist returns a denylist backed by rdb.
func NewTokenDenylist(rdb redis.Cmdable) *TokenDenylist {
	return &TokenDenylist{rdb: rdb, now: time.Now}
}

// Revoke marks jti as revoked until expiresAt. Already-expired tokens are ignored.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if d == nil || d.rdb == nil || jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, denyKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti was revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d == nil || d.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, denyKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
