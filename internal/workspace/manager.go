package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cutroom/internal/config"
	"cutroom/internal/failure"
	"cutroom/internal/logging"
	"cutroom/internal/metrics"
	"cutroom/internal/registry"
)

// Catalog is the registry surface the manager depends on. *registry.Store
// satisfies it.
type Catalog interface {
	Insert(ctx context.Context, name, path string, settings map[string]any) (*registry.Project, error)
	GetByID(ctx context.Context, id int64) (*registry.Project, error)
	GetByName(ctx context.Context, name string) (*registry.Project, error)
	List(ctx context.Context) ([]*registry.Project, error)
	Rename(ctx context.Context, id int64, name, path string) (*registry.Project, error)
	UpdateSettings(ctx context.Context, id int64, settings map[string]any) error
	Settings(ctx context.Context, id int64) (map[string]any, error)
	Touch(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) (bool, error)
}

var _ Catalog = (*registry.Store)(nil)

// Operation names used for metrics and log lines.
const (
	OpCreate      = "create"
	OpRename      = "rename"
	OpDelete      = "delete"
	OpDuplicate   = "duplicate"
	OpExport      = "export"
	OpImport      = "import"
	OpCleanTemp   = "clean_temp"
	OpImportMedia = "import_media"
	OpRemoveMedia = "remove_media"
)

// Manager binds registry rows to project directories under one projects
// root.
type Manager struct {
	root       string
	stagingDir string
	exportDir  string
	defaults   config.Defaults
	headroom   int64

	catalog  Catalog
	locks    *nameLocks
	logger   *slog.Logger
	observer metrics.Observer
	now      func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(observer metrics.Observer) Option {
	return func(m *Manager) {
		m.observer = metrics.OrNop(observer)
	}
}

// WithClock overrides the clock used for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates the projects root, staging area, and lock directory
// and returns a manager over catalog.
func NewManager(cfg *config.Config, catalog Catalog, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workspace: config is required")
	}
	if catalog == nil {
		return nil, errors.New("workspace: catalog is required")
	}
	m := &Manager{
		root:       cfg.Paths.ProjectsDir,
		stagingDir: cfg.StagingDir(),
		exportDir:  cfg.Paths.ExportDir,
		defaults:   cfg.Defaults,
		headroom:   int64(cfg.Storage.MinFreeMiB) << 20,
		catalog:    catalog,
		locks:      newNameLocks(cfg.LockDir()),
		logger:     logging.NewNop(),
		observer:   metrics.Nop{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "workspace")

	for _, dir := range []string{m.root, m.stagingDir, cfg.LockDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, failure.Wrap(failure.ErrIO, "workspace init", fmt.Sprintf("create %s", dir), err)
		}
	}
	return m, nil
}

// Root returns the projects directory.
func (m *Manager) Root() string {
	return m.root
}

// Catalog exposes the registry backing the manager.
func (m *Manager) Catalog() Catalog {
	return m.catalog
}

func (m *Manager) projectPath(name string) string {
	return filepath.Join(m.root, name)
}

func (m *Manager) observe(operation string, start time.Time, err error) {
	m.observer.RecordOperation(operation, time.Since(start), err)
}

// Project returns a registry row by id.
func (m *Manager) Project(ctx context.Context, id int64) (*registry.Project, error) {
	return m.catalog.GetByID(ctx, id)
}

// ProjectByName returns a registry row by exact name. The name is sanitized
// first so callers can pass what the user typed.
func (m *Manager) ProjectByName(ctx context.Context, rawName string) (*registry.Project, error) {
	name, err := sanitize(rawName)
	if err != nil {
		return nil, err
	}
	return m.catalog.GetByName(ctx, name)
}

// ListProjects returns every project, most recently modified first.
func (m *Manager) ListProjects(ctx context.Context) ([]*registry.Project, error) {
	return m.catalog.List(ctx)
}

// UpdateSettings replaces a project's registry settings and mirrors them
// into project.json. The row is authoritative; a manifest that cannot be
// rewritten is only logged.
func (m *Manager) UpdateSettings(ctx context.Context, id int64, settings map[string]any) error {
	if err := m.catalog.UpdateSettings(ctx, id, settings); err != nil {
		return err
	}
	project, err := m.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := syncManifestSettings(project.Path, settings); err != nil {
		logging.WarnWithContext(m.logger, "manifest update failed", "manifest_update_failed",
			logging.Project(project.ID, project.Name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "exported archives carry stale project settings"),
		)
	}
	return nil
}

// Settings returns a project's registry settings.
func (m *Manager) Settings(ctx context.Context, id int64) (map[string]any, error) {
	return m.catalog.Settings(ctx, id)
}

// Touch bumps a project's modified_at.
func (m *Manager) Touch(ctx context.Context, id int64) error {
	return m.catalog.Touch(ctx, id)
}

// removeTree deletes path as compensation for a failed operation. Failures
// are logged and swallowed.
func (m *Manager) removeTree(path, operation string) {
	if path == "" {
		return
	}
	if !isWithinAny(path, m.root, m.stagingDir) {
		logging.WarnWithContext(m.logger, "refusing to remove directory outside managed roots", "cleanup_skipped",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldOperation, operation),
			logging.String(logging.FieldImpact, "directory left in place"),
		)
		return
	}
	if err := os.RemoveAll(path); err != nil {
		logging.WarnWithContext(m.logger, "cleanup failed", "cleanup_failed",
			logging.String(logging.FieldPath, path),
			logging.String(logging.FieldOperation, operation),
			logging.Error(err),
			logging.String(logging.FieldImpact, "leftover directory remains on disk"),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
		)
	}
}
