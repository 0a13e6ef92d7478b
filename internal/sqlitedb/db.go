package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	sqliteConstraintCode    = 19
	sqliteUniqueCode        = 2067
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Journal selects the SQLite journal mode for a database file.
type Journal string

const (
	// JournalWAL suits long-lived databases with concurrent readers.
	JournalWAL Journal = "WAL"
	// JournalDelete keeps the database a single file on disk between
	// operations, which matters when the file is copied or archived.
	JournalDelete Journal = "DELETE"
)

// Open connects to the SQLite file at path and applies the standard pragmas.
func Open(path string, journal Journal) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=" + string(journal),
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// IsBusy reports whether err is SQLITE_BUSY or a locked-database error.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		code := coder.Code()
		if code == sqliteUniqueCode {
			return true
		}
		if code&0xff == sqliteConstraintCode && strings.Contains(err.Error(), "UNIQUE") {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// RetryOnBusy runs op until it succeeds, fails with a non-busy error, or the
// attempt budget is spent.
func RetryOnBusy(ctx context.Context, op func() error) error {
	ctx = ensureContext(ctx)
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Exec runs a statement with busy retries.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := RetryOnBusy(ctx, func() error {
		res, execErr = db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise; busy failures retry the whole unit.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	ctx = ensureContext(ctx)
	return RetryOnBusy(ctx, func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()
		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}
