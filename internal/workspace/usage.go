package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/fileutil"
	"cutroom/internal/logging"
)

// Usage is the on-disk footprint of a project tree.
type Usage struct {
	Bytes int64
	Files int
}

func (m *Manager) usage(ctx context.Context, id int64, operation string) (Usage, error) {
	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return Usage{}, err
	}
	exists, err := dirExists(project.Path)
	if err != nil {
		return Usage{}, failure.Wrap(failure.ErrIO, operation, "stat project", err)
	}
	if !exists {
		return Usage{}, failure.NotFound(operation, "project directory", project.Path)
	}
	size, files, err := fileutil.TreeStats(project.Path)
	if err != nil {
		return Usage{}, failure.Wrap(failure.ErrIO, operation, "walk project", err)
	}
	return Usage{Bytes: size, Files: files}, nil
}

// ProjectUsage walks the project tree once and returns its size and file
// count.
func (m *Manager) ProjectUsage(ctx context.Context, id int64) (Usage, error) {
	return m.usage(ctx, id, "project usage")
}

// ProjectSize returns the total size of regular files in the project tree,
// or (0, ErrNotFound) when the project or its directory is missing.
func (m *Manager) ProjectSize(ctx context.Context, id int64) (int64, error) {
	u, err := m.usage(ctx, id, "project size")
	return u.Bytes, err
}

// CountFiles returns the number of regular files in the project tree, or
// (0, ErrNotFound) when the project or its directory is missing.
func (m *Manager) CountFiles(ctx context.Context, id int64) (int, error) {
	u, err := m.usage(ctx, id, "count files")
	return u.Files, err
}

// CleanTempFiles empties temp/ and cache/, keeping (or recreating) the
// directories themselves, and returns the number of entries removed.
func (m *Manager) CleanTempFiles(ctx context.Context, id int64) (removed int, err error) {
	start := time.Now()
	defer func() { m.observe(OpCleanTemp, start, err) }()

	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	exists, err := dirExists(project.Path)
	if err != nil {
		return 0, failure.Wrap(failure.ErrIO, "clean temp files", "stat project", err)
	}
	if !exists {
		return 0, failure.NotFound("clean temp files", "project directory", project.Path)
	}

	var errs []error
	for _, dir := range []string{TempDir, CacheDir} {
		n, err := fileutil.EmptyDir(filepath.Join(project.Path, dir))
		removed += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return removed, failure.Wrap(failure.ErrIO, "clean temp files", "", err)
	}

	m.logger.Info("temp files cleaned",
		logging.Project(project.ID, project.Name),
		logging.Int("removed", removed),
		logging.String(logging.FieldEventType, "temp_cleaned"),
	)
	return removed, nil
}
