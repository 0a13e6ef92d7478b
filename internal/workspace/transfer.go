package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cutroom/internal/archive"
	"cutroom/internal/failure"
	"cutroom/internal/fileutil"
	"cutroom/internal/logging"
	"cutroom/internal/preflight"
	"cutroom/internal/projectdb"
	"cutroom/internal/registry"
	"cutroom/internal/staging"
)

// ExportFileName is the archive name used for a project.
func ExportFileName(projectName string) string {
	return projectName + "_export." + archive.Extension
}

// ExportProject archives the project tree into destDir (the configured
// export directory when empty) and returns the archive path. Entries are
// rooted at "{name}/". The archive is written under a temporary name and
// renamed into place, so a failed export never leaves a partial archive.
func (m *Manager) ExportProject(ctx context.Context, id int64, destDir string) (archivePath string, err error) {
	start := time.Now()
	defer func() { m.observe(OpExport, start, err) }()

	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	exists, err := dirExists(project.Path)
	if err != nil {
		return "", failure.Wrap(failure.ErrIO, "export project", "stat project", err)
	}
	if !exists {
		return "", failure.NotFound("export project", "project directory", project.Path)
	}

	if strings.TrimSpace(destDir) == "" {
		destDir = m.exportDir
	}
	destDir, err = filepath.Abs(destDir)
	if err != nil {
		return "", failure.Wrap(failure.ErrIO, "export project", "resolve destination", err)
	}
	if destDir == filepath.Clean(project.Path) || fileutil.IsWithin(project.Path, destDir) {
		return "", failure.Wrap(failure.ErrInvalidInput, "export project", "destination lies inside the project", nil)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", failure.Wrap(failure.ErrIO, "export project", "create destination", err)
	}

	final := filepath.Join(destDir, ExportFileName(project.Name))
	partial := filepath.Join(destDir, "."+uuid.NewString()+".partial")
	if err := archive.WriteDir(ctx, project.Path, project.Name, partial); err != nil {
		m.removeFile(partial, OpExport)
		return "", failure.Wrap(failure.ErrIO, "export project", "write archive", err)
	}
	if err := os.Rename(partial, final); err != nil {
		m.removeFile(partial, OpExport)
		return "", failure.Wrap(failure.ErrIO, "export project", "finalize archive", err)
	}
	if info, statErr := os.Stat(final); statErr == nil {
		m.observer.RecordBytes(OpExport, info.Size())
	}

	m.logger.Info("project exported",
		logging.Project(project.ID, project.Name),
		logging.String(logging.FieldPath, final),
		logging.String(logging.FieldEventType, "project_exported"),
	)
	return final, nil
}

// ImportProject extracts an exported archive into a staging directory,
// validates its layout, moves it under the projects root, and registers it.
// The project is named nameOverride when set, else by the manifest. Staging
// is always removed; the moved tree is removed if the row cannot be written.
func (m *Manager) ImportProject(ctx context.Context, archivePath, nameOverride string) (project *registry.Project, err error) {
	start := time.Now()
	defer func() { m.observe(OpImport, start, err) }()

	info, err := os.Stat(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.NotFound("import project", "archive", archivePath)
		}
		return nil, failure.Wrap(failure.ErrIO, "import project", "stat archive", err)
	}
	if info.IsDir() {
		return nil, failure.Wrap(failure.ErrInvalidInput, "import project", archivePath+" is a directory", nil)
	}

	staging.CleanStale(ctx, m.stagingDir, staging.DefaultMaxAge, m.logger)
	stageDir := filepath.Join(m.stagingDir, staging.ImportPrefix+uuid.NewString())
	defer m.removeTree(stageDir, OpImport)

	if err := archive.Extract(ctx, archivePath, stageDir); err != nil {
		if errors.Is(err, archive.ErrUnsafeEntry) {
			return nil, failure.Wrap(failure.ErrInvalidStructure, "import project", "unsafe archive", err)
		}
		return nil, failure.Wrap(failure.ErrIO, "import project", "extract archive", err)
	}
	root, err := locateProjectRoot(stageDir)
	if err != nil {
		return nil, err
	}
	manifest, err := validateStructure(root)
	if err != nil {
		return nil, err
	}

	rawName := nameOverride
	if strings.TrimSpace(rawName) == "" {
		rawName = manifest.Name
	}
	if strings.TrimSpace(rawName) == "" && root != stageDir {
		rawName = filepath.Base(root)
	}
	name, err := sanitize(rawName)
	if err != nil {
		return nil, err
	}

	release, err := m.locks.acquire(ctx, name)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := m.ensureNameFree(ctx, "import project", name); err != nil {
		return nil, err
	}
	path := m.projectPath(name)
	if taken, err := pathTaken(path); err != nil || taken {
		return nil, failure.Wrap(failure.ErrIO, "import project",
			fmt.Sprintf("directory %s already exists without a registry entry", path), err)
	}

	size, _, err := fileutil.TreeStats(root)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "import project", "measure staging", err)
	}
	if err := preflight.EnsureFreeSpace(m.root, size, m.headroom); err != nil {
		return nil, err
	}
	if err := moveDir(root, path); err != nil {
		m.removeTree(path, OpImport)
		return nil, failure.Wrap(failure.ErrIO, "import project", "move into projects directory", err)
	}
	m.observer.RecordBytes(OpImport, size)

	if err := m.finishImport(path, name, manifest); err != nil {
		m.removeTree(path, OpImport)
		return nil, err
	}

	project, err = m.catalog.Insert(ctx, name, path, manifest.importSettings())
	if err != nil {
		m.removeTree(path, OpImport)
		return nil, err
	}

	m.logger.Info("project imported",
		logging.Project(project.ID, project.Name),
		logging.String("archive", archivePath),
		logging.String(logging.FieldEventType, "project_imported"),
	)
	return project, nil
}

// finishImport restores the optional parts of the layout and opens the store
// once so an archive without project.db gets a fresh one.
func (m *Manager) finishImport(path, name string, manifest *Manifest) error {
	if err := os.MkdirAll(filepath.Join(path, CacheDir), 0o755); err != nil {
		return failure.Wrap(failure.ErrIO, "import project", "create cache directory", err)
	}
	if manifest.Name != name {
		if err := m.renameManifest(path, name); err != nil {
			return failure.Wrap(failure.ErrIO, "import project", "write manifest", err)
		}
	}
	return projectdb.Init(path)
}

func (m *Manager) removeFile(path, operation string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(m.logger, "cleanup failed", "cleanup_failed",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldOperation, operation),
			logging.Error(err),
			logging.String(logging.FieldImpact, "leftover file remains on disk"),
		)
	}
}
