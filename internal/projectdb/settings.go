package projectdb

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"cutroom/internal/failure"
	"cutroom/internal/sqlitedb"
)

// Settings returns the full settings map.
func (s *Store) Settings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM project_settings`)
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "settings", "query settings", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, failure.Wrap(failure.ErrStorage, "settings", "scan setting", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "settings", "iterate settings", err)
	}
	return settings, nil
}

// SetSetting inserts or replaces a setting, stamping a fresh modified_at.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return failure.Wrap(failure.ErrInvalidInput, "set setting", "key is empty", nil)
	}
	_, err := sqlitedb.Exec(ctx, s.db,
		`INSERT INTO project_settings (key, value, modified_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, modified_at = excluded.modified_at`,
		key, value, sqlitedb.FormatTime(s.clock.Now()),
	)
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "set setting", key, err)
	}
	return nil
}

// Setting returns a single setting record.
func (s *Store) Setting(ctx context.Context, key string) (*Setting, error) {
	var (
		setting     Setting
		modifiedRaw sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT key, value, modified_at FROM project_settings WHERE key = ?`, key).
		Scan(&setting.Key, &setting.Value, &modifiedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("get setting", "setting", key)
	}
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "get setting", key, err)
	}
	setting.ModifiedAt = sqlitedb.ParseNullTime(modifiedRaw)
	return &setting, nil
}
