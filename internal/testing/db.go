// Package testing provides testing utilities and helpers for the portfolio backend.
package testing

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sellscalehood/backend/internal/database"
)

// NewTestDB creates a migrated portfolio database in a per-test temp directory
// using the pure Go driver. The database is closed when the test ends.
func NewTestDB(t *testing.T) *database.DB {
	t.Helper()
	return NewTestDBWithDriver(t, database.DriverModernc)
}

// NewTestDBWithDriver is NewTestDB for a specific driver.
// Tests using the cgo driver are skipped when the binary was built without cgo.
func NewTestDBWithDriver(t *testing.T, driver string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:   filepath.Join(t.TempDir(), "portfolio.db"),
		Driver: driver,
		Name:   "portfolio",
	})
	if err != nil {
		if driver == database.DriverMattn && strings.Contains(err.Error(), "cgo") {
			t.Skipf("mattn/go-sqlite3 unavailable: %v", err)
		}
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database: %v", err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}
