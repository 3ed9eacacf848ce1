package utils

import (
	"context" // Context for Redis operations
	"time"    // Remaining token lifetime

	"github.com/redis/go-redis/v9" // Redis client
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationList records logged-out token ids until their natural expiry.
// Without a Redis client it is a no-op and tokens stay valid until exp.
type RevocationList struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRevocationList creates a revocation list; rdb may be nil
func NewRevocationList(rdb *redis.Client) *RevocationList {
	return &RevocationList{rdb: rdb, now: time.Now}
}

// Enabled reports whether revocations are persisted
func (r *RevocationList) Enabled() bool { return r != nil && r.rdb != nil }

// Revoke marks jti as revoked until expiresAt
func (r *RevocationList) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !r.Enabled() || jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil // Already expired, nothing to remember
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether jti has been revoked
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if !r.Enabled() || jti == "" {
		return false, nil
	}
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
