package main

import (
	"context"   // Shutdown and Redis ping contexts
	"errors"    // Error matching
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"store_rating/internal/api"        // HTTP handlers and router
	"store_rating/internal/config"     // Configuration
	"store_rating/internal/db"         // Database bootstrap
	"store_rating/internal/repository" // Data access
	"store_rating/internal/service"    // Business logic
	"store_rating/internal/utils"      // Hashing, tokens, cache, limiter

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Setup logger
	if err := utils.ConfigureLogger(cfg.IsProd, cfg.LogLevel); err != nil {
		logrus.Fatalf("failed to configure logger: %v", err)
	}

	// Connect to the database
	gdb, err := db.Open(cfg.DB, cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			logrus.Fatalf("failed to migrate DB: %v", err)
		}
	}

	// Setup Redis client, optional
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,  // Redis server address
			Password:     cfg.Redis.Pass,  // Redis password
			DB:           cfg.Redis.DB,    // Redis database number
			DialTimeout:  2 * time.Second, // Fail fast, Redis is optional
			ReadTimeout:  time.Second,     // Per-command read timeout
			WriteTimeout: time.Second,     // Per-command write timeout
		})
		// Test Redis connection
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logrus.Warn("REDIS_ADDR not set: caching, logout revocation and login rate limiting are disabled")
	}

	issuer, err := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		logrus.Fatalf("failed to create token issuer: %v", err)
	}
	hasher := utils.NewPasswordHasher(cfg.PasswordCost)
	cache := utils.NewCache(redisClient, cfg.CacheTTL)
	revocations := utils.NewRevocationList(redisClient)

	users := repository.NewUserRepository(gdb)
	stores := repository.NewStoreRepository(gdb)
	ratings := repository.NewRatingRepository(gdb)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := api.NewRouter(api.Deps{
		DB:             gdb,
		Redis:          redisClient,
		Issuer:         issuer,
		Revocations:    revocations,
		LoginLimiter:   utils.NewFixedWindowLimiter(redisClient, "ratelimit:login", cfg.LoginRateLimit, cfg.LoginRateWindow),
		Auth:           service.NewAuthService(users, hasher, issuer, revocations, cache),
		Ratings:        service.NewRatingService(stores, ratings, cache),
		Stores:         service.NewStoreService(users, stores, cache),
		Reports:        service.NewReportService(users, stores, ratings, cache),
		TrustedProxies: []string{"127.0.0.1"},
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server running on %s", cfg.AppPort) // Log server start
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Wait for interrupt and drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("forced shutdown: %v", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
