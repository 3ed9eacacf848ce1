package api

import (
	"context"  // Ping timeouts
	"net/http" // HTTP status codes
	"time"     // Timeout durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

const healthTimeout = 2 * time.Second

// HealthHandler reports database and Redis reachability. Redis is reported
// as "disabled" when it is not configured.
func HealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		database := "up"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			database = "down"
			status = http.StatusServiceUnavailable
		}

		cache := "disabled"
		if rdb != nil {
			cache = "up"
			if err := rdb.Ping(ctx).Err(); err != nil {
				cache = "down" // Optional dependency, does not fail the check
			}
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}
		c.JSON(status, gin.H{"status": overall, "database": database, "redis": cache})
	}
}
