package utils

import (
	"context" // Context for Redis operations
	"fmt"     // Key formatting
	"strings" // Key normalisation
	"time"    // Window arithmetic

	"github.com/redis/go-redis/v9" // Redis client
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// FixedWindowLimiter counts hits per key in fixed Redis-backed windows
type FixedWindowLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewFixedWindowLimiter returns nil when rdb is nil or the limit is not
// positive; a nil limiter allows everything.
func NewFixedWindowLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *FixedWindowLimiter {
	if rdb == nil || limit <= 0 || window <= 0 {
		return nil
	}
	return &FixedWindowLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Allow reports whether key is still within quota. Redis failures are
// returned to the caller, which decides whether to fail open.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil {
		return true, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := time.Now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
	n, err := fixedWindowScript.Run(ctx, l.rdb, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(l.limit), nil
}
