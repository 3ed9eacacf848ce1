package db

import (
	"context" // Context for seeding
	"errors"  // Error matching
	"fmt"     // Error wrapping

	"store_rating/internal/config" // Admin seed settings
	"store_rating/internal/domain" // Importing domain models
	"store_rating/internal/utils"  // Password hashing

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Migrate performs automatic migration for the database schema. It creates
// the unique (user_id, store_id) index the rating upsert depends on.
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Store{}, &domain.Rating{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedAdmin creates the configured admin account unless a user with that
// email already exists. It does nothing when no admin email is configured.
func SeedAdmin(ctx context.Context, db *gorm.DB, hasher *utils.PasswordHasher, admin config.AdminConfig) (bool, error) {
	if admin.Email == "" {
		return false, nil
	}
	if admin.Password == "" {
		return false, errors.New("seed admin: ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}

	var count int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := hasher.Hash(admin.Password)
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	user := domain.User{
		Name:     admin.Name,
		Email:    admin.Email,
		Password: hash,
		Address:  admin.Address,
		Role:     domain.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("Admin account created")
	return true, nil
}
