package registry

import (
	"database/sql"

	"cutroom/internal/sqlitedb"
)

const projectColumns = "id, name, project_path, settings, created_at, modified_at"

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		id          int64
		name        string
		path        string
		settings    sql.NullString
		createdRaw  sql.NullString
		modifiedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &name, &path, &settings, &createdRaw, &modifiedRaw); err != nil {
		return nil, err
	}
	return &Project{
		ID:         id,
		Name:       name,
		Path:       path,
		Settings:   sqlitedb.DecodeMap(settings.String),
		CreatedAt:  sqlitedb.ParseNullTime(createdRaw),
		ModifiedAt: sqlitedb.ParseNullTime(modifiedRaw),
	}, nil
}
