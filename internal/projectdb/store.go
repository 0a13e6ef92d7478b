package projectdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/sqlitedb"
)

// FileName is the store file inside a project directory.
const FileName = "project.db"

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is an open handle on one project's database. Callers open it for the
// duration of an operation and close it afterwards.
type Store struct {
	db    *sql.DB
	path  string
	clock *sqlitedb.Clock
}

// Open opens (creating if needed) the store inside projectPath, applies
// migrations, and seeds default settings.
func Open(projectPath string) (*Store, error) {
	return openWithClock(projectPath, nil)
}

func openWithClock(projectPath string, now func() time.Time) (*Store, error) {
	info, err := os.Stat(projectPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.NotFound("open project store", "project directory", projectPath)
		}
		return nil, failure.Wrap(failure.ErrIO, "open project store", "stat project directory", err)
	}
	if !info.IsDir() {
		return nil, failure.Wrap(failure.ErrInvalidStructure, "open project store", fmt.Sprintf("%s is not a directory", projectPath), nil)
	}

	dbPath := filepath.Join(projectPath, FileName)
	db, err := sqlitedb.Open(dbPath, sqlitedb.JournalDelete)
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "open project store", "", err)
	}
	store := &Store{db: db, path: dbPath, clock: sqlitedb.NewClock(now)}

	ctx := context.Background()
	if err := sqlitedb.Migrate(ctx, db, migrationFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, failure.Wrap(failure.ErrStorage, "open project store", "migrate", err)
	}
	if err := store.seedSettings(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Init creates and seeds the store for a new project, then closes it.
func Init(projectPath string) error {
	store, err := Open(projectPath)
	if err != nil {
		return err
	}
	return store.Close()
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

func (s *Store) seedSettings(ctx context.Context) error {
	keys := make([]string, 0, len(DefaultSettings))
	for key := range DefaultSettings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	stamp := sqlitedb.FormatTime(s.clock.Now())
	err := sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO project_settings (key, value, modified_at) VALUES (?, ?, ?)`,
				key, DefaultSettings[key], stamp,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "open project store", "seed settings", err)
	}
	return nil
}

func storageErr(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	// Markers set inside a transaction pass through untouched.
	if failure.KindOf(err) != failure.KindStorage || errors.Is(err, failure.ErrStorage) {
		return err
	}
	return failure.Wrap(failure.ErrStorage, operation, message, err)
}
