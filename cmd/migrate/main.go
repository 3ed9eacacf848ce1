package main

import (
	"context" // Seed context
	"time"    // Seed timeout

	"store_rating/internal/config" // Custom import path (Config)
	"store_rating/internal/db"     // Custom import path (Database)
	"store_rating/internal/utils"  // Password hashing, logger

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if err := utils.ConfigureLogger(cfg.IsProd, cfg.LogLevel); err != nil {
		logrus.Fatalf("failed to configure logger: %v", err)
	}

	gdb, err := db.Open(cfg.DB, cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("failed to migrate DB: %v", err)
	}
	logrus.Info("Database migrated successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	created, err := db.SeedAdmin(ctx, gdb, utils.NewPasswordHasher(cfg.PasswordCost), cfg.Admin)
	if err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
	if !created {
		logrus.Info("Admin seed skipped")
	}
}
