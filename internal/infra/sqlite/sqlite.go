// Package sqlite provides the SQLite-backed implementation of the store ports.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/albarakah/umrah-backoffice/internal/port"
)

// Compile-time checks that Store satisfies every port it backs.
var (
	_ port.LedgerStore       = (*Store)(nil)
	_ port.JamaahStore       = (*Store)(nil)
	_ port.PackageStore      = (*Store)(nil)
	_ port.VendorStore       = (*Store)(nil)
	_ port.ReportStore       = (*Store)(nil)
	_ port.AuthStore         = (*Store)(nil)
	_ port.ChatStore         = (*Store)(nil)
	_ port.AuditStore        = (*Store)(nil)
	_ port.NotificationStore = (*Store)(nil)
	_ port.SettingsStore     = (*Store)(nil)
)

// Store implements the persistence ports on a single SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath, enabling foreign keys
// and running migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable (readiness checks).
func (s *Store) Ping() error {
	return s.db.Ping()
}

// timeLayout is how timestamps are stored; calendar dates use domain.DateLayout.
const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
