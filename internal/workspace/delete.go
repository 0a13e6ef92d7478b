package workspace

import (
	"context"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/logging"
)

// DeleteProject removes the registry row and then the directory tree. Once
// the row is gone the project no longer exists; a directory that cannot be
// removed is only logged.
func (m *Manager) DeleteProject(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { m.observe(OpDelete, start, err) }()

	project, release, err := m.lockProject(ctx, id, nil)
	if err != nil {
		return err
	}
	defer release()

	removed, err := m.catalog.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return failure.NotFound("delete project", "project", id)
	}

	m.removeTree(project.Path, OpDelete)
	m.logger.Info("project deleted",
		logging.Project(project.ID, project.Name),
		logging.String(logging.FieldEventType, "project_deleted"),
	)
	return nil
}
