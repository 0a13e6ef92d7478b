package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cutroom/internal/failure"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "registry.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInsertAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	project, err := store.Insert(ctx, "Trailer", "/projects/Trailer", map[string]any{"fps": 24})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if project.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if project.CreatedAt.IsZero() || !project.CreatedAt.Equal(project.ModifiedAt) {
		t.Fatalf("unexpected timestamps: %v / %v", project.CreatedAt, project.ModifiedAt)
	}

	byName, err := store.GetByName(ctx, "Trailer")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if byName.ID != project.ID || byName.Path != "/projects/Trailer" {
		t.Fatalf("unexpected project %#v", byName)
	}
	if byName.Settings["fps"] != float64(24) {
		t.Fatalf("settings not decoded: %#v", byName.Settings)
	}

	if _, err := store.GetByName(ctx, "trailer"); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("names are case-sensitive, expected not found, got %v", err)
	}
	if _, err := store.GetByID(ctx, project.ID+100); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInsertDuplicateNameConflicts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, "Same", "/p/Same", nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	_, err := store.Insert(ctx, "Same", "/p/Same-2", nil)
	if !errors.Is(err, failure.ErrNameConflict) {
		t.Fatalf("expected name conflict, got %v", err)
	}
	projects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected one project, got %d", len(projects))
	}
}

func TestListOrdersByModifiedDescending(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store, err := openWithClock(filepath.Join(t.TempDir(), "registry.db"), func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	a, _ := store.Insert(ctx, "A", "/p/A", nil)
	b, _ := store.Insert(ctx, "B", "/p/B", nil)
	c, _ := store.Insert(ctx, "C", "/p/C", nil)
	if err := store.Touch(ctx, a.ID); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	projects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []int64{a.ID, c.ID, b.ID}
	if len(projects) != len(want) {
		t.Fatalf("expected %d projects, got %d", len(want), len(projects))
	}
	for i, id := range want {
		if projects[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d (%s)", i, id, projects[i].ID, projects[i].Name)
		}
	}
}

func TestRename(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	x, _ := store.Insert(ctx, "X", "/p/X", nil)
	if _, err := store.Insert(ctx, "Y", "/p/Y", nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if _, err := store.Rename(ctx, x.ID, "Y", "/p/Y"); !errors.Is(err, failure.ErrNameConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	still, err := store.GetByName(ctx, "X")
	if err != nil || still.ID != x.ID {
		t.Fatalf("original row should be intact: %v %#v", err, still)
	}

	renamed, err := store.Rename(ctx, x.ID, "Z", "/p/Z")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if renamed.Name != "Z" || renamed.Path != "/p/Z" {
		t.Fatalf("unexpected rename result %#v", renamed)
	}
	if !renamed.ModifiedAt.After(x.ModifiedAt) {
		t.Fatalf("rename should bump modified_at")
	}

	if _, err := store.Rename(ctx, 999, "W", "/p/W"); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	project, _ := store.Insert(ctx, "S", "/p/S", nil)
	settings, err := store.Settings(ctx, project.ID)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if len(settings) != 0 {
		t.Fatalf("expected empty default settings, got %v", settings)
	}

	if err := store.UpdateSettings(ctx, project.ID, map[string]any{"codec": "prores"}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	settings, _ = store.Settings(ctx, project.ID)
	if settings["codec"] != "prores" {
		t.Fatalf("unexpected settings %v", settings)
	}
	updated, _ := store.GetByID(ctx, project.ID)
	if !updated.ModifiedAt.After(project.ModifiedAt) {
		t.Fatal("settings update should bump modified_at")
	}

	if err := store.UpdateSettings(ctx, 404, nil); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Settings(ctx, 404); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	project, _ := store.Insert(ctx, "D", "/p/D", nil)
	removed, err := store.Delete(ctx, project.ID)
	if err != nil || !removed {
		t.Fatalf("Delete: removed=%v err=%v", removed, err)
	}
	removed, err = store.Delete(ctx, project.ID)
	if err != nil || removed {
		t.Fatalf("second Delete: removed=%v err=%v", removed, err)
	}
	if _, err := store.Insert(ctx, "D", "/p/D", nil); err != nil {
		t.Fatalf("name should be reusable after delete: %v", err)
	}
}

func TestCheckHealth(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.Insert(ctx, "H", "/p/H", nil); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("unexpected health %#v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("unexpected missing columns %v", health.MissingColumns)
	}
	if health.TotalProjects != 1 {
		t.Fatalf("expected 1 project, got %d", health.TotalProjects)
	}
	if len(health.Migrations) != 1 || health.Migrations[0] != "001_projects" {
		t.Fatalf("unexpected migrations %v", health.Migrations)
	}
}
