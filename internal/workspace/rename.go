package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/logging"
	"cutroom/internal/registry"
)

// RenameProject moves the project directory to the path derived from
// rawName and then updates the row. When the row update fails the directory
// is moved back.
func (m *Manager) RenameProject(ctx context.Context, id int64, rawName string) (project *registry.Project, err error) {
	start := time.Now()
	defer func() { m.observe(OpRename, start, err) }()

	newName, err := sanitize(rawName)
	if err != nil {
		return nil, err
	}
	current, release, err := m.lockProject(ctx, id, func(*registry.Project) string { return newName })
	if err != nil {
		return nil, err
	}
	defer release()
	if current.Name == newName {
		return current, nil
	}

	newPath := m.projectPath(newName)
	taken, err := pathTaken(newPath)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "rename project", "stat target", err)
	}
	if taken {
		if _, lookupErr := m.catalog.GetByName(ctx, newName); lookupErr == nil {
			return nil, failure.Wrap(failure.ErrNameConflict, "rename project", fmt.Sprintf("%q", newName), nil)
		}
		return nil, failure.Wrap(failure.ErrIO, "rename project",
			fmt.Sprintf("directory %s already exists without a registry entry", newPath), nil)
	}

	if err := os.Rename(current.Path, newPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, failure.NotFound("rename project", "project directory", current.Path)
		}
		return nil, failure.Wrap(failure.ErrIO, "rename project", "rename directory", err)
	}

	project, err = m.catalog.Rename(ctx, id, newName, newPath)
	if err != nil {
		if rbErr := os.Rename(newPath, current.Path); rbErr != nil {
			logging.WarnWithContext(m.logger, "rename rollback failed", "rename_rollback_failed",
				logging.Project(current.ID, current.Name),
				logging.String(logging.FieldPath, newPath),
				logging.Error(rbErr),
				logging.String(logging.FieldImpact, "project directory no longer matches its registry path"),
				logging.String(logging.FieldErrorHint, fmt.Sprintf("move %s back to %s", newPath, current.Path)),
			)
		}
		return nil, err
	}

	if err := m.renameManifest(newPath, newName); err != nil {
		logging.WarnWithContext(m.logger, "manifest update failed", "manifest_update_failed",
			logging.Project(project.ID, project.Name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "project.json still carries the old name"),
		)
	}

	m.logger.Info("project renamed",
		logging.Project(project.ID, project.Name),
		logging.String("previous_name", current.Name),
		logging.String(logging.FieldEventType, "project_renamed"),
	)
	return project, nil
}
