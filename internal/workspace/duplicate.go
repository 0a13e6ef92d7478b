package workspace

import (
	"context"
	"fmt"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/fileutil"
	"cutroom/internal/logging"
	"cutroom/internal/preflight"
	"cutroom/internal/registry"
)

// DuplicateProject copies a project tree under a new name and registers the
// copy with the source's settings. rawName defaults to "{name}_copy". The
// copied store keeps its internal ids; stores never share ids with each
// other, so nothing needs renumbering.
func (m *Manager) DuplicateProject(ctx context.Context, id int64, rawName string) (project *registry.Project, err error) {
	start := time.Now()
	defer func() { m.observe(OpDuplicate, start, err) }()

	var (
		name    string
		nameErr error
	)
	source, release, err := m.lockProject(ctx, id, func(p *registry.Project) string {
		raw := rawName
		if raw == "" {
			raw = p.Name + "_copy"
		}
		name, nameErr = sanitize(raw)
		return name
	})
	if err != nil {
		return nil, err
	}
	defer release()
	if nameErr != nil {
		return nil, nameErr
	}

	if err := m.ensureNameFree(ctx, "duplicate project", name); err != nil {
		return nil, err
	}
	exists, err := dirExists(source.Path)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "duplicate project", "stat source", err)
	}
	if !exists {
		return nil, failure.NotFound("duplicate project", "project directory", source.Path)
	}
	path := m.projectPath(name)
	if taken, err := pathTaken(path); err != nil || taken {
		return nil, failure.Wrap(failure.ErrIO, "duplicate project",
			fmt.Sprintf("directory %s already exists without a registry entry", path), err)
	}

	size, _, err := fileutil.TreeStats(source.Path)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "duplicate project", "measure source", err)
	}
	if err := preflight.EnsureFreeSpace(m.root, size, m.headroom); err != nil {
		return nil, err
	}

	if err := fileutil.CopyTree(source.Path, path); err != nil {
		m.removeTree(path, OpDuplicate)
		return nil, failure.Wrap(failure.ErrIO, "duplicate project", "copy tree", err)
	}
	if err := m.renameManifest(path, name); err != nil {
		m.removeTree(path, OpDuplicate)
		return nil, failure.Wrap(failure.ErrIO, "duplicate project", "write manifest", err)
	}
	m.observer.RecordBytes(OpDuplicate, size)

	project, err = m.catalog.Insert(ctx, name, path, source.Settings)
	if err != nil {
		m.removeTree(path, OpDuplicate)
		return nil, err
	}

	m.logger.Info("project duplicated",
		logging.Project(project.ID, project.Name),
		logging.Int64("source_project_id", source.ID),
		logging.Int64("bytes", size),
		logging.String(logging.FieldEventType, "project_duplicated"),
	)
	return project, nil
}
