package service

import (
	"context" // Context for Redis operations
	"net/url" // Unambiguous key encoding

	"store_rating/internal/utils" // Cache

	"github.com/sirupsen/logrus" // Structured logging
)

// adminCachePrefix namespaces every cached admin listing
const adminCachePrefix = "admin:"

// cacheKey builds "admin:<kind>:<encoded filters>" from alternating
// name/value pairs. Empty values are left out so an unfiltered listing has
// a single key.
func cacheKey(kind string, kv ...string) string {
	params := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			params.Set(kv[i], kv[i+1])
		}
	}
	return adminCachePrefix + kind + ":" + params.Encode() // Encode sorts by name
}

// invalidateAdminCache drops all cached admin listings after a write.
// Failures only cost freshness for one TTL, so they are logged, not returned.
func invalidateAdminCache(ctx context.Context, cache *utils.Cache) {
	if err := cache.InvalidatePrefix(ctx, adminCachePrefix); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate admin cache")
	}
}
