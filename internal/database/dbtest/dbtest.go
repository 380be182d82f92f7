// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"servicehub/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// New returns a fresh migrated database that lives as long as the test. A single connection keeps
// the in-memory database alive and serializes transactions the way row locks would.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
