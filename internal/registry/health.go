package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"cutroom/internal/sqlitedb"
)

var expectedColumns = []string{"id", "name", "project_path", "settings", "created_at", "modified_at"}

// CheckHealth returns diagnostic information about the registry database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("registry database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat registry database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("registry database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("registry database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping registry database: %w", err)
	}
	health.DatabaseReadable = true

	if versions, err := sqlitedb.AppliedMigrations(connCtx, s.db); err == nil {
		health.Migrations = versions
	}

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'projects'")
	switch err := row.Scan(&tableName); {
	case errors.Is(err, sql.ErrNoRows):
		health.TableExists = false
	case err != nil:
		health.Error = err.Error()
		return health, fmt.Errorf("query table info: %w", err)
	default:
		health.TableExists = true
	}

	if health.TableExists {
		columns, err := tableColumns(connCtx, s.db, "projects")
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		health.ColumnsPresent = columns
		health.MissingColumns = missingColumns(expectedColumns, columns)

		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM projects")
		if err := row.Scan(&health.TotalProjects); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count projects: %w", err)
		}
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, fmt.Errorf("table info: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info: %w", err)
	}
	return columns, nil
}

func missingColumns(expected, present []string) []string {
	have := make(map[string]struct{}, len(present))
	for _, col := range present {
		have[col] = struct{}{}
	}
	var missing []string
	for _, col := range expected {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	sort.Strings(missing)
	return missing
}
