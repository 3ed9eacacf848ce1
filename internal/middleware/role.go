package middleware

import (
	"net/http" // HTTP status codes

	"store_rating/internal/domain"  // Roles
	"store_rating/internal/metrics" // Guard rejection counter
	"store_rating/internal/utils"   // Claims

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

type roleSet map[domain.Role]struct{}

func newRoleSet(roles []domain.Role) roleSet {
	set := make(roleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// permits reports whether role is allowed; the empty set allows everyone
func (s roleSet) permits(role domain.Role) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[role]
	return ok
}

// RequireRoles checks the role carried by the token. It must run after
// Authenticate; the role is taken from the claims, never from the database.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := newRoleSet(roles)
	return func(c *gin.Context) {
		claims := ClaimsFrom(c) // Claims stored by Authenticate
		if claims == nil {
			reject(c, "missing_token", "Unauthorized")
			return
		}
		if !allowed.permits(claims.Role) {
			forbid(c, claims)
			return
		}
		c.Next() // Role accepted
	}
}

func forbid(c *gin.Context, claims *utils.Claims) {
	metrics.GuardRejectionsTotal.WithLabelValues("forbidden").Inc()
	logrus.WithFields(logrus.Fields{
		"user_id":    claims.UserID,
		"role":       claims.Role,
		"path":       c.Request.URL.Path,
		"request_id": RequestIDFrom(c),
	}).Warn("Insufficient rights")
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient rights"})
}
