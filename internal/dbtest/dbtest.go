// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"testing" // Test cleanup hooks

	"store_rating/internal/config" // Database settings
	"store_rating/internal/db"     // Open and migrate

	"github.com/google/uuid" // Unique database names
	"gorm.io/gorm"           // ORM
	"gorm.io/gorm/logger"    // Silence SQL logging
)

// New returns a migrated in-memory SQLite database private to the test.
// The single shared connection keeps the memory database alive and
// serialises writers the way a real engine's row locks would.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	gdb, err := db.Open(cfg, false)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	gdb.Logger = logger.Default.LogMode(logger.Silent)
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
