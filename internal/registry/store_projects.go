package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cutroom/internal/failure"
	"cutroom/internal/sqlitedb"
)

// Insert adds a project row. A duplicate name fails with
// failure.ErrNameConflict.
func (s *Store) Insert(ctx context.Context, name, path string, settings map[string]any) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, failure.Wrap(failure.ErrInvalidName, "registry insert", "name is empty", nil)
	}
	encoded, err := sqlitedb.EncodeMap(settings)
	if err != nil {
		return nil, failure.Wrap(failure.ErrInvalidInput, "registry insert", "settings", err)
	}
	now := s.clock.Now()
	stamp := sqlitedb.FormatTime(now)
	res, err := sqlitedb.Exec(ctx, s.db,
		`INSERT INTO projects (name, project_path, settings, created_at, modified_at) VALUES (?, ?, ?, ?, ?)`,
		name, path, encoded, stamp, stamp,
	)
	if err != nil {
		if sqlitedb.IsUniqueViolation(err) {
			return nil, failure.Wrap(failure.ErrNameConflict, "registry insert", fmt.Sprintf("%q", name), nil)
		}
		return nil, failure.Wrap(failure.ErrStorage, "registry insert", "insert project", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "registry insert", "last insert id", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a project by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("registry get", "project", id)
	}
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "registry get", "query project", err)
	}
	return project, nil
}

// GetByName fetches a project by its exact (case-sensitive) name.
func (s *Store) GetByName(ctx context.Context, name string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ?`, name)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("registry get", "project", fmt.Sprintf("%q", name))
	}
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "registry get", "query project", err)
	}
	return project, nil
}

// List returns every project, most recently modified first.
func (s *Store) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY modified_at DESC, id DESC`)
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "registry list", "query projects", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, failure.Wrap(failure.ErrStorage, "registry list", "scan project", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "registry list", "iterate projects", err)
	}
	return projects, nil
}

// Rename updates the name and path of a project. The unique index on name
// rejects conflicts with failure.ErrNameConflict.
func (s *Store) Rename(ctx context.Context, id int64, name, path string) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, failure.Wrap(failure.ErrInvalidName, "registry rename", "name is empty", nil)
	}
	res, err := sqlitedb.Exec(ctx, s.db,
		`UPDATE projects SET name = ?, project_path = ?, modified_at = ? WHERE id = ?`,
		name, path, sqlitedb.FormatTime(s.clock.Now()), id,
	)
	if err != nil {
		if sqlitedb.IsUniqueViolation(err) {
			return nil, failure.Wrap(failure.ErrNameConflict, "registry rename", fmt.Sprintf("%q", name), nil)
		}
		return nil, failure.Wrap(failure.ErrStorage, "registry rename", "update project", err)
	}
	if err := requireAffected(res, "registry rename", id); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// UpdateSettings replaces the settings map and bumps modified_at.
func (s *Store) UpdateSettings(ctx context.Context, id int64, settings map[string]any) error {
	encoded, err := sqlitedb.EncodeMap(settings)
	if err != nil {
		return failure.Wrap(failure.ErrInvalidInput, "registry settings", "encode settings", err)
	}
	res, err := sqlitedb.Exec(ctx, s.db,
		`UPDATE projects SET settings = ?, modified_at = ? WHERE id = ?`,
		encoded, sqlitedb.FormatTime(s.clock.Now()), id,
	)
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "registry settings", "update settings", err)
	}
	return requireAffected(res, "registry settings", id)
}

// Settings returns the settings map of a project.
func (s *Store) Settings(ctx context.Context, id int64) (map[string]any, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT settings FROM projects WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("registry settings", "project", id)
	}
	if err != nil {
		return nil, failure.Wrap(failure.ErrStorage, "registry settings", "query settings", err)
	}
	return sqlitedb.DecodeMap(raw.String), nil
}

// Touch bumps modified_at after a change to the project's contents.
func (s *Store) Touch(ctx context.Context, id int64) error {
	res, err := sqlitedb.Exec(ctx, s.db,
		`UPDATE projects SET modified_at = ? WHERE id = ?`,
		sqlitedb.FormatTime(s.clock.Now()), id,
	)
	if err != nil {
		return failure.Wrap(failure.ErrStorage, "registry touch", "update project", err)
	}
	return requireAffected(res, "registry touch", id)
}

// Delete removes a project row and reports whether one existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := sqlitedb.Exec(ctx, s.db, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, failure.Wrap(failure.ErrStorage, "registry delete", "delete project", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, failure.Wrap(failure.ErrStorage, "registry delete", "rows affected", err)
	}
	return affected > 0, nil
}

func requireAffected(res sql.Result, operation string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return failure.Wrap(failure.ErrStorage, operation, "rows affected", err)
	}
	if affected == 0 {
		return failure.NotFound(operation, "project", id)
	}
	return nil
}
