package api

import (
	"errors"   // Error matching
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"reflect"  // Struct field tags
	"strings"  // Tag parsing
	"sync"     // One-time registration

	"store_rating/internal/domain" // Roles

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Gin's validator engine
	"github.com/go-playground/validator/v10" // Struct validation
)

var registerOnce sync.Once

// registerValidators teaches gin's validator the custom "role" tag and to
// report fields by their JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).Valid()
		})
	})
}

// bindJSON decodes the request body into dst. On failure it writes a 400
// and returns false.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return false
	}
	return true
}

// validationMessage turns a binding error into a client-safe sentence
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request" // Malformed JSON or wrong types
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "role":
		return "Invalid role"
	default:
		return fmt.Sprintf("Invalid %s", fe.Field())
	}
}
