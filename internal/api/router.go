package api

import (
	"store_rating/internal/domain"     // Roles
	"store_rating/internal/middleware" // Guards and request middleware
	"store_rating/internal/service"    // Business logic
	"store_rating/internal/utils"      // Tokens, revocation and rate limiting

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics endpoint
	"github.com/redis/go-redis/v9"                            // Redis client
	"gorm.io/gorm"                                            // GORM ORM library
)

// Deps holds everything the router wires into handlers
type Deps struct {
	DB             *gorm.DB                  // Health checks
	Redis          *redis.Client             // Health checks, nil when disabled
	Issuer         *utils.TokenIssuer        // Token verification
	Revocations    *utils.RevocationList     // Logged out tokens
	LoginLimiter   *utils.FixedWindowLimiter // nil disables login rate limiting
	Auth           *service.AuthService
	Ratings        *service.RatingService
	Stores         *service.StoreService
	Reports        *service.ReportService
	TrustedProxies []string // Proxies allowed to set client IP headers
}

// NewRouter builds the gin engine with every route
func NewRouter(d Deps) (*gin.Engine, error) {
	registerValidators()

	r := gin.New() // Gin router instance
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.Metrics())

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	r.GET("/healthz", HealthHandler(d.DB, d.Redis))  // Liveness and dependency status
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus scrape endpoint

	// Guards by role set
	anyRole := middleware.Authenticate(d.Issuer, d.Revocations)
	normalUser := middleware.Guard(d.Issuer, d.Revocations, domain.RoleNormalUser)
	storeOwner := middleware.Guard(d.Issuer, d.Revocations, domain.RoleStoreOwner)

	// Auth routes
	auth := r.Group("/api/auth")
	auth.POST("/signupbyuser", RegisterNormalUserHandler(d.Auth))                        // Self-service registration
	auth.POST("/signup", SignupHandler(d.Auth))                                          // Generic registration
	auth.POST("/login", middleware.LoginRateLimit(d.LoginLimiter), LoginHandler(d.Auth)) // Login endpoint
	auth.PUT("/update-password", anyRole, UpdatePasswordHandler(d.Auth))                 // Password change
	auth.POST("/logout", anyRole, LogoutHandler(d.Auth))                                 // Token revocation

	// Store routes, guarded per route
	stores := r.Group("/api/stores")
	stores.POST("/rate", normalUser, SubmitRatingHandler(d.Ratings))                // Submit or update a rating
	stores.GET("/all", normalUser, ListStoresForUserHandler(d.Reports))             // Stores with own rating
	stores.GET("/dashboard", storeOwner, OwnerDashboardHandler(d.Reports))          // Owner dashboard
	stores.GET("/ratings", storeOwner, OwnerRatingsHandler(d.Reports))              // Ratings on own store
	stores.GET("/average-rating", storeOwner, OwnerAverageRatingHandler(d.Reports)) // Mean over own stores

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/api/admin",
		middleware.Authenticate(d.Issuer, d.Revocations),
		middleware.RequireRoles(domain.RoleAdmin),
	)
	adminGroup.POST("/users", AddUserHandler(d.Auth))                    // Create user with any role
	adminGroup.POST("/stores", AddStoreHandler(d.Stores))                // Create store
	adminGroup.GET("/dashboard-stats", DashboardStatsHandler(d.Reports)) // Totals
	adminGroup.GET("/users", ListUsersHandler(d.Reports))                // Filtered user list
	adminGroup.GET("/stores", ListStoresHandler(d.Reports))              // Filtered store list

	return r, nil
}
