package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"store_rating/internal/domain"     // Error kinds
	"store_rating/internal/middleware" // Request ids

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// internalErrorMessage is the only body a 500 ever carries
const internalErrorMessage = "Internal server error"

// statusFor maps an error kind to its HTTP status; 0 means internal
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return 0
	}
}

// respondError writes err as {"error": msg}. Only *domain.Error messages
// reach the client; everything else is logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		if status := statusFor(derr); status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"error": derr.Message})
			return
		}
	}
	logrus.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": middleware.RequestIDFrom(c),
	}).WithError(err).Error("Request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
}
