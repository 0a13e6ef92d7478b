package registry

import "time"

// Project is a registry row.
type Project struct {
	ID         int64
	Name       string
	Path       string
	Settings   map[string]any
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// DatabaseHealth captures diagnostic information about the registry database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	Migrations       []string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalProjects    int
	Error            string
}
