package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"store_rating/internal/domain"  // Roles
	"store_rating/internal/metrics" // Guard rejection counter
	"store_rating/internal/utils"   // Token verification and revocation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Context keys set by the guard
const (
	ClaimsKey = "claims" // *utils.Claims of the caller
	UserIDKey = "userID" // Caller's user ID
)

// Guard validates the bearer token and, when roles is non-empty, requires
// the token's role to be one of them. An empty role set admits any
// authenticated caller.
func Guard(issuer *utils.TokenIssuer, revocations *utils.RevocationList, roles ...domain.Role) gin.HandlerFunc {
	allowed := newRoleSet(roles)
	return func(c *gin.Context) {
		claims, ok := authenticate(c, issuer, revocations)
		if !ok {
			return // Already aborted
		}
		if !allowed.permits(claims.Role) {
			forbid(c, claims)
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// Authenticate validates the bearer token without a role restriction
func Authenticate(issuer *utils.TokenIssuer, revocations *utils.RevocationList) gin.HandlerFunc {
	return Guard(issuer, revocations)
}

// authenticate verifies the Authorization header and stores the claims on
// the context. On failure it aborts with 401 and returns false.
func authenticate(c *gin.Context, issuer *utils.TokenIssuer, revocations *utils.RevocationList) (*utils.Claims, bool) {
	authHeader := c.GetHeader("Authorization") // Get Authorization header
	// Check if the Authorization header is present and properly formatted
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		reject(c, "missing_token", "Unauthorized")
		return nil, false
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")) // Extract the token string
	claims, err := issuer.Verify(tokenStr)                                   // Verify signature, algorithm and expiry
	if err != nil {
		reject(c, "invalid_token", "Invalid or expired token")
		return nil, false
	}

	revoked, err := revocations.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		// Redis outage degrades to stateless verification
		logrus.WithError(err).WithField("request_id", RequestIDFrom(c)).Warn("Revocation lookup failed")
	} else if revoked {
		reject(c, "revoked", "Invalid or expired token")
		return nil, false
	}

	c.Set(ClaimsKey, claims)        // Store claims in context
	c.Set(UserIDKey, claims.UserID) // Store userID in context
	return claims, true
}

func reject(c *gin.Context, reason, message string) {
	metrics.GuardRejectionsTotal.WithLabelValues(reason).Inc()
	logrus.WithFields(logrus.Fields{
		"reason":     reason,
		"path":       c.Request.URL.Path,
		"request_id": RequestIDFrom(c),
	}).Debug("Request rejected by guard")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// ClaimsFrom returns the claims stored by the guard, or nil when the
// request was not authenticated.
func ClaimsFrom(c *gin.Context) *utils.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
