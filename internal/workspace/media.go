package workspace

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/fileutil"
	"cutroom/internal/logging"
	"cutroom/internal/projectdb"
)

// WithStore opens the project's store for the duration of fn.
func (m *Manager) WithStore(ctx context.Context, id int64, fn func(*projectdb.Store) error) error {
	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}
	store, err := projectdb.Open(project.Path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			m.logger.Warn("close project store failed",
				logging.Project(project.ID, project.Name),
				logging.Error(closeErr),
			)
		}
	}()
	return fn(store)
}

// UpdateStore runs fn like WithStore and bumps the project's modified_at
// when fn succeeds.
func (m *Manager) UpdateStore(ctx context.Context, id int64, fn func(*projectdb.Store) error) error {
	if err := m.WithStore(ctx, id, fn); err != nil {
		return err
	}
	return m.catalog.Touch(ctx, id)
}

// MediaPath resolves a stored media file path against the project root.
func MediaPath(projectPath string, media *projectdb.MediaFile) string {
	if media == nil {
		return ""
	}
	if filepath.IsAbs(media.FilePath) {
		return media.FilePath
	}
	return filepath.Join(projectPath, filepath.FromSlash(media.FilePath))
}

// ImportMedia copies srcPath into the project's sources/ directory under a
// free name and records it in the store. The copy is removed again when the
// record cannot be written.
func (m *Manager) ImportMedia(ctx context.Context, id int64, srcPath string) (media *projectdb.MediaFile, err error) {
	start := time.Now()
	defer func() { m.observe(OpImportMedia, start, err) }()

	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(srcPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.NotFound("import media", "source file", srcPath)
		}
		return nil, failure.Wrap(failure.ErrIO, "import media", "stat source", err)
	}
	if !info.Mode().IsRegular() {
		return nil, failure.Wrap(failure.ErrInvalidInput, "import media", srcPath+" is not a regular file", nil)
	}

	sources := filepath.Join(project.Path, SourcesDir)
	if err := os.MkdirAll(sources, 0o755); err != nil {
		return nil, failure.Wrap(failure.ErrIO, "import media", "create sources directory", err)
	}
	target, err := fileutil.UniquePath(sources, filepath.Base(srcPath))
	if err != nil {
		return nil, failure.Wrap(failure.ErrIO, "import media", "choose target name", err)
	}
	if err := fileutil.CopyMedia(srcPath, target); err != nil {
		return nil, failure.Wrap(failure.ErrIO, "import media", "copy file", err)
	}

	fileName := filepath.Base(target)
	err = m.WithStore(ctx, id, func(store *projectdb.Store) error {
		var addErr error
		media, addErr = store.AddMediaFile(ctx, projectdb.MediaInput{
			FileName: fileName,
			FilePath: filepath.ToSlash(filepath.Join(SourcesDir, fileName)),
			Metadata: map[string]any{
				"original_path": srcPath,
				"size_bytes":    info.Size(),
			},
		})
		return addErr
	})
	if err != nil {
		m.removeFile(target, OpImportMedia)
		return nil, err
	}
	m.observer.RecordBytes(OpImportMedia, info.Size())
	m.touchQuietly(ctx, project.ID, project.Name)

	m.logger.Info("media imported",
		logging.Project(project.ID, project.Name),
		logging.Int64("media_id", media.ID),
		logging.String(logging.FieldPath, target),
		logging.String(logging.FieldEventType, "media_imported"),
	)
	return media, nil
}

// RemoveMedia deletes a media record with its placements and effects. When
// deleteFile is set the physical file is removed too, provided it lives under
// the project's sources/ directory.
func (m *Manager) RemoveMedia(ctx context.Context, id, mediaID int64, deleteFile bool) (err error) {
	start := time.Now()
	defer func() { m.observe(OpRemoveMedia, start, err) }()

	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}
	var deleted *projectdb.MediaFile
	err = m.WithStore(ctx, id, func(store *projectdb.Store) error {
		var err error
		deleted, err = store.DeleteMediaFile(ctx, mediaID)
		return err
	})
	if err != nil {
		return err
	}
	m.touchQuietly(ctx, project.ID, project.Name)

	if deleteFile && deleted != nil {
		path := MediaPath(project.Path, deleted)
		if fileutil.IsWithin(filepath.Join(project.Path, SourcesDir), path) {
			m.removeFile(path, OpRemoveMedia)
		}
	}
	m.logger.Info("media removed",
		logging.Project(project.ID, project.Name),
		logging.Int64("media_id", mediaID),
		logging.Bool("file_deleted", deleteFile),
		logging.String(logging.FieldEventType, "media_removed"),
	)
	return nil
}

// touchQuietly bumps modified_at after a change that already succeeded; a
// failure only costs list ordering, so it is logged.
func (m *Manager) touchQuietly(ctx context.Context, id int64, name string) {
	if err := m.catalog.Touch(ctx, id); err != nil {
		logging.WarnWithContext(m.logger, "touch project failed", "project_touch_failed",
			logging.Project(id, name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "project list order may be stale"),
		)
	}
}
