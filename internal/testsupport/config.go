package testsupport

import (
	"path/filepath"
	"testing"

	"cutroom/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The free-space headroom is disabled so tests do not depend on the host
// disk. Directories are created before the config is returned.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ProjectsDir = filepath.Join(base, "projects")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Storage.MinFreeMiB = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return builder.cfg
}

// WithMinFreeMiB overrides the free-space headroom on the test config.
func WithMinFreeMiB(mib int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.MinFreeMiB = mib
	}
}

// WithDefaults overrides the manifest defaults on the test config.
func WithDefaults(fn func(*config.Defaults)) ConfigOption {
	return func(b *configBuilder) {
		fn(&b.cfg.Defaults)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ProjectsDir)
}
