package registry

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cutroom/internal/sqlitedb"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store manages registry persistence backed by SQLite.
type Store struct {
	db    *sql.DB
	path  string
	clock *sqlitedb.Clock
}

// Open initializes or connects to the registry database at path, creating
// the parent directory when needed.
func Open(path string) (*Store, error) {
	return openWithClock(path, nil)
}

func openWithClock(path string, now func() time.Time) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure registry directory: %w", err)
	}
	db, err := sqlitedb.Open(path, sqlitedb.JournalWAL)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, path: path, clock: sqlitedb.NewClock(now)}
	if err := sqlitedb.Migrate(context.Background(), db, migrationFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate registry: %w", err)
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
