package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/logging"
	"cutroom/internal/projectdb"
	"cutroom/internal/registry"
)

// CreateProject allocates the directory tree for rawName, initializes its
// store, and inserts the registry row. If anything after the directory is
// created fails, the directory is removed again.
func (m *Manager) CreateProject(ctx context.Context, rawName string, settings map[string]any) (project *registry.Project, err error) {
	start := time.Now()
	defer func() { m.observe(OpCreate, start, err) }()

	name, err := sanitize(rawName)
	if err != nil {
		return nil, err
	}
	release, err := m.locks.acquire(ctx, name)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := m.ensureNameFree(ctx, "create", name); err != nil {
		return nil, err
	}

	path := m.projectPath(name)
	if err := m.createSkeleton(path, name, settings); err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Not ours; never delete it.
			return nil, failure.Wrap(failure.ErrIO, "create project",
				fmt.Sprintf("directory %s already exists without a registry entry", path), nil)
		}
		m.removeTree(path, OpCreate)
		return nil, failure.Wrap(failure.ErrIO, "create project", "create directory tree", err)
	}
	if err := projectdb.Init(path); err != nil {
		m.removeTree(path, OpCreate)
		return nil, err
	}

	project, err = m.catalog.Insert(ctx, name, path, settings)
	if err != nil {
		m.removeTree(path, OpCreate)
		return nil, err
	}

	m.logger.Info("project created",
		logging.Project(project.ID, project.Name),
		logging.String(logging.FieldPath, project.Path),
		logging.String(logging.FieldEventType, "project_created"),
	)
	return project, nil
}

// ensureNameFree fails with ErrNameConflict when a row already uses name.
func (m *Manager) ensureNameFree(ctx context.Context, operation, name string) error {
	_, err := m.catalog.GetByName(ctx, name)
	switch {
	case err == nil:
		return failure.Wrap(failure.ErrNameConflict, operation, fmt.Sprintf("%q", name), nil)
	case errors.Is(err, failure.ErrNotFound):
		return nil
	default:
		return err
	}
}
