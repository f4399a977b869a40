// Package testutil opens migrated SQLite databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"winsbygroup.com/keyserver/internal/sqlite"
)

// NewTestDB returns a migrated database in the test's temp dir.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	return NewTestDBAt(t, filepath.Join(t.TempDir(), "licenses.db"))
}

// NewTestDBAt opens and migrates the database at dbPath. It is closed when the test ends.
func NewTestDBAt(t *testing.T, dbPath string) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if _, err := db.Exec(`PRAGMA journal_mode=DELETE;`); err != nil {
		t.Fatalf("set journal mode: %v", err)
	}

	if err := sqlite.RunMigrations(db.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// Clock returns a fixed clock for services that accept one.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
