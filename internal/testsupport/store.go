package testsupport

import (
	"testing"

	"cutroom/internal/config"
	"cutroom/internal/registry"
	"cutroom/internal/workspace"
)

// MustOpenRegistry opens the registry for cfg and registers cleanup.
func MustOpenRegistry(t testing.TB, cfg *config.Config) *registry.Store {
	t.Helper()

	store, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewManager builds a workspace manager over catalog, or over a fresh
// registry when catalog is nil.
func NewManager(t testing.TB, cfg *config.Config, catalog workspace.Catalog, opts ...workspace.Option) *workspace.Manager {
	t.Helper()

	if catalog == nil {
		catalog = MustOpenRegistry(t, cfg)
	}
	manager, err := workspace.NewManager(cfg, catalog, opts...)
	if err != nil {
		t.Fatalf("workspace.NewManager: %v", err)
	}
	return manager
}
