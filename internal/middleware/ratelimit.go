package middleware

import (
	"net/http" // HTTP status codes

	"store_rating/internal/metrics" // Login counter
	"store_rating/internal/utils"   // Fixed window limiter

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// LoginRateLimit limits login attempts per client IP. A nil limiter admits
// every request, and so does a limiter whose Redis is unreachable.
func LoginRateLimit(limiter *utils.FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logrus.WithError(err).WithField("request_id", RequestIDFrom(c)).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
			logrus.WithField("client_ip", c.ClientIP()).Warn("Login rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many login attempts, try again later"})
			return
		}
		c.Next()
	}
}
