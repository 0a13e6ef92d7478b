package workspace_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cutroom/internal/failure"
	"cutroom/internal/projectdb"
	"cutroom/internal/registry"
	"cutroom/internal/testsupport"
	"cutroom/internal/workspace"
)

type failingCatalog struct {
	workspace.Catalog
	insertErr error
}

func (f *failingCatalog) Insert(context.Context, string, string, map[string]any) (*registry.Project, error) {
	return nil, f.insertErr
}

type recordingObserver struct {
	mu     sync.Mutex
	ops    []string
	failed map[string]int
	bytes  map[string]int64
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{failed: map[string]int{}, bytes: map[string]int64{}}
}

func (r *recordingObserver) RecordOperation(op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	if err != nil {
		r.failed[op]++
	}
}

func (r *recordingObserver) RecordBytes(op string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bytes[op] += n
}

func projectDirs(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read projects root: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCreateProjectBuildsLayout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	observer := newRecordingObserver()
	manager := testsupport.NewManager(t, cfg, nil, workspace.WithObserver(observer))
	ctx := context.Background()

	project, err := manager.CreateProject(ctx, "  Summer: Trip?  ", map[string]any{"color": "warm"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.Name != "Summer Trip" {
		t.Fatalf("expected sanitized name, got %q", project.Name)
	}
	if project.Path != filepath.Join(cfg.Paths.ProjectsDir, "Summer Trip") {
		t.Fatalf("unexpected path %s", project.Path)
	}
	for _, dir := range []string{"sources", "output", "temp", "cache"} {
		testsupport.AssertDir(t, filepath.Join(project.Path, dir))
	}
	if _, err := os.Stat(filepath.Join(project.Path, projectdb.FileName)); err != nil {
		t.Fatalf("project store missing: %v", err)
	}
	if project.Settings["color"] != "warm" {
		t.Fatalf("settings not stored: %v", project.Settings)
	}

	data, err := os.ReadFile(filepath.Join(project.Path, workspace.ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	for _, want := range []string{`"name": "Summer Trip"`, `"resolution": "1920x1080"`, `"audio_codec": "aac"`, `"created"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("manifest missing %s:\n%s", want, data)
		}
	}

	if len(observer.ops) != 1 || observer.ops[0] != workspace.OpCreate {
		t.Fatalf("expected one create observation, got %v", observer.ops)
	}
}

func TestCreateProjectRejectsDuplicateName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	if _, err := manager.CreateProject(ctx, "Demo", nil); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	before := projectDirs(t, cfg.Paths.ProjectsDir)

	for _, name := range []string{"Demo", "Demo?", " Demo. "} {
		_, err := manager.CreateProject(ctx, name, nil)
		if !errors.Is(err, failure.ErrNameConflict) {
			t.Fatalf("CreateProject(%q): expected name conflict, got %v", name, err)
		}
	}
	after := projectDirs(t, cfg.Paths.ProjectsDir)
	if len(after) != len(before) {
		t.Fatalf("duplicate create left a directory: %v", after)
	}
}

func TestCreateProjectRejectsInvalidName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)

	if _, err := manager.CreateProject(context.Background(), " ?*. ", nil); !errors.Is(err, failure.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if dirs := projectDirs(t, cfg.Paths.ProjectsDir); len(dirs) != 0 {
		t.Fatalf("expected empty root, got %v", dirs)
	}
}

func TestCreateProjectKeepsForeignDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)

	foreign := filepath.Join(cfg.Paths.ProjectsDir, "Stray")
	testsupport.WriteBytes(t, filepath.Join(foreign, "notes.txt"), []byte("keep me"))

	_, err := manager.CreateProject(context.Background(), "Stray", nil)
	if !errors.Is(err, failure.ErrIO) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(foreign, "notes.txt")); err != nil {
		t.Fatalf("foreign data must survive: %v", err)
	}
}

func TestCreateProjectRemovesDirectoryWhenInsertFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	catalog := &failingCatalog{
		Catalog:   testsupport.MustOpenRegistry(t, cfg),
		insertErr: failure.Wrap(failure.ErrStorage, "registry insert", "forced", nil),
	}
	manager := testsupport.NewManager(t, cfg, catalog)

	_, err := manager.CreateProject(context.Background(), "X", nil)
	if !errors.Is(err, failure.ErrStorage) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	testsupport.AssertNotExists(t, filepath.Join(cfg.Paths.ProjectsDir, "X"))
}

func TestConcurrentCreateSameNameHasOneWinner(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.CreateProject(ctx, "Race", nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, failure.ErrNameConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if successes != 1 || conflicts != workers-1 {
		t.Fatalf("expected 1 success and %d conflicts, got %d/%d", workers-1, successes, conflicts)
	}
}

func TestRenameProjectMovesDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	project, _ := manager.CreateProject(ctx, "Old", nil)
	renamed, err := manager.RenameProject(ctx, project.ID, "New/Name")
	if err != nil {
		t.Fatalf("RenameProject: %v", err)
	}
	if renamed.Name != "NewName" {
		t.Fatalf("expected sanitized name, got %q", renamed.Name)
	}
	testsupport.AssertNotExists(t, project.Path)
	testsupport.AssertDir(t, renamed.Path)

	data, err := os.ReadFile(filepath.Join(renamed.Path, workspace.ManifestName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if !strings.Contains(string(data), `"name": "NewName"`) {
		t.Fatalf("manifest not renamed:\n%s", data)
	}

	same, err := manager.RenameProject(ctx, project.ID, "NewName")
	if err != nil || same.Path != renamed.Path {
		t.Fatalf("renaming to the same name should be a no-op: %v", err)
	}
	if _, err := manager.RenameProject(ctx, 9999, "Z"); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRenameProjectRollsBackWhenRowUpdateFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	x, _ := manager.CreateProject(ctx, "X", nil)
	y, _ := manager.CreateProject(ctx, "Y", nil)
	// With Y's directory gone the directory rename succeeds and only the
	// unique name constraint can reject the change.
	if err := os.RemoveAll(y.Path); err != nil {
		t.Fatalf("remove Y dir: %v", err)
	}

	_, err := manager.RenameProject(ctx, x.ID, "Y")
	if !errors.Is(err, failure.ErrNameConflict) {
		t.Fatalf("expected name conflict, got %v", err)
	}
	testsupport.AssertDir(t, x.Path)
	testsupport.AssertNotExists(t, y.Path)

	still, err := manager.ProjectByName(ctx, "X")
	if err != nil || still.ID != x.ID {
		t.Fatalf("original project should still resolve by name: %v", err)
	}
}

func TestRenameProjectTargetDirectoryTaken(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	a, _ := manager.CreateProject(ctx, "A", nil)
	if _, err := manager.CreateProject(ctx, "B", nil); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := manager.RenameProject(ctx, a.ID, "B"); !errors.Is(err, failure.ErrNameConflict) {
		t.Fatalf("expected name conflict, got %v", err)
	}

	if err := os.Mkdir(filepath.Join(cfg.Paths.ProjectsDir, "Orphan"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := manager.RenameProject(ctx, a.ID, "Orphan"); !errors.Is(err, failure.ErrIO) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
	testsupport.AssertDir(t, a.Path)
}

func TestDeleteProjectRemovesRowAndDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	project, _ := manager.CreateProject(ctx, "Gone", nil)
	if err := manager.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	testsupport.AssertNotExists(t, project.Path)
	if _, err := manager.Project(ctx, project.ID); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := manager.DeleteProject(ctx, project.ID); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestDeleteProjectSucceedsWithoutDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	project, _ := manager.CreateProject(ctx, "Hollow", nil)
	if err := os.RemoveAll(project.Path); err != nil {
		t.Fatal(err)
	}
	if err := manager.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("row is authoritative; delete should succeed: %v", err)
	}
}

func TestDuplicateProjectCopiesTreeAndStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	observer := newRecordingObserver()
	manager := testsupport.NewManager(t, cfg, nil, workspace.WithObserver(observer))
	ctx := context.Background()

	source, _ := manager.CreateProject(ctx, "Cut", map[string]any{"lut": "film"})
	clip := filepath.Join(testsupport.BaseDir(cfg), "in", "clip.mp4")
	testsupport.WriteFile(t, clip, 4096)
	media, err := manager.ImportMedia(ctx, source.ID, clip)
	if err != nil {
		t.Fatalf("ImportMedia: %v", err)
	}

	dup, err := manager.DuplicateProject(ctx, source.ID, "")
	if err != nil {
		t.Fatalf("DuplicateProject: %v", err)
	}
	if dup.Name != "Cut_copy" {
		t.Fatalf("expected default copy name, got %q", dup.Name)
	}
	if dup.Settings["lut"] != "film" {
		t.Fatalf("settings not carried over: %v", dup.Settings)
	}
	if _, err := os.Stat(filepath.Join(dup.Path, "sources", "clip.mp4")); err != nil {
		t.Fatalf("media file not copied: %v", err)
	}

	err = manager.WithStore(ctx, dup.ID, func(store *projectdb.Store) error {
		copied, err := store.GetMediaFile(ctx, media.ID)
		if err != nil {
			return err
		}
		if copied.FileName != media.FileName {
			t.Errorf("copied media mismatch: %#v", copied)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("copied store should keep media ids: %v", err)
	}

	if _, err := manager.DuplicateProject(ctx, source.ID, ""); !errors.Is(err, failure.ErrNameConflict) {
		t.Fatalf("expected name conflict on second default duplicate, got %v", err)
	}
	if observer.bytes[workspace.OpDuplicate] < 4096 {
		t.Fatalf("expected duplicate bytes to be recorded, got %d", observer.bytes[workspace.OpDuplicate])
	}
}

func TestDuplicateProjectRemovesCopyWhenInsertFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	reg := testsupport.MustOpenRegistry(t, cfg)
	good := testsupport.NewManager(t, cfg, reg)
	ctx := context.Background()
	source, err := good.CreateProject(ctx, "Src", nil)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	bad := testsupport.NewManager(t, cfg, &failingCatalog{Catalog: reg, insertErr: errors.New("forced")})
	if _, err := bad.DuplicateProject(ctx, source.ID, "Dst"); err == nil {
		t.Fatal("expected failure")
	}
	testsupport.AssertNotExists(t, filepath.Join(cfg.Paths.ProjectsDir, "Dst"))
	testsupport.AssertDir(t, source.Path)
}

func TestProjectSizeAndCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	project, _ := manager.CreateProject(ctx, "Sized", nil)
	baseSize, err := manager.ProjectSize(ctx, project.ID)
	if err != nil {
		t.Fatalf("ProjectSize: %v", err)
	}
	baseCount, err := manager.CountFiles(ctx, project.ID)
	if err != nil {
		t.Fatalf("CountFiles: %v", err)
	}
	if baseCount != 2 {
		t.Fatalf("expected manifest and store only, got %d files", baseCount)
	}

	testsupport.WriteFile(t, filepath.Join(project.Path, "output", "render.mp4"), 1000)
	testsupport.WriteFile(t, filepath.Join(project.Path, "temp", "a", "b.bin"), 24)

	size, _ := manager.ProjectSize(ctx, project.ID)
	count, _ := manager.CountFiles(ctx, project.ID)
	if size != baseSize+1024 || count != baseCount+2 {
		t.Fatalf("unexpected usage size=%d count=%d", size, count)
	}

	if err := os.RemoveAll(project.Path); err != nil {
		t.Fatal(err)
	}
	size, err = manager.ProjectSize(ctx, project.ID)
	if size != 0 || !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected (0, not found), got (%d, %v)", size, err)
	}
	count, err = manager.CountFiles(ctx, 4242)
	if count != 0 || !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected (0, not found), got (%d, %v)", count, err)
	}
}

func TestCleanTempFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	project, _ := manager.CreateProject(ctx, "Scratch", nil)
	testsupport.WriteFile(t, filepath.Join(project.Path, "temp", "one.tmp"), 10)
	testsupport.WriteFile(t, filepath.Join(project.Path, "temp", "nested", "two.tmp"), 10)
	keep := filepath.Join(project.Path, "sources", "keep.mp4")
	testsupport.WriteFile(t, keep, 10)
	if err := os.RemoveAll(filepath.Join(project.Path, "cache")); err != nil {
		t.Fatal(err)
	}

	removed, err := manager.CleanTempFiles(ctx, project.ID)
	if err != nil {
		t.Fatalf("CleanTempFiles: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 entries removed, got %d", removed)
	}
	testsupport.AssertDir(t, filepath.Join(project.Path, "temp"))
	testsupport.AssertDir(t, filepath.Join(project.Path, "cache"))
	if entries, _ := os.ReadDir(filepath.Join(project.Path, "temp")); len(entries) != 0 {
		t.Fatalf("temp not emptied: %d entries", len(entries))
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("sources must be untouched: %v", err)
	}
}

func TestImportAndRemoveMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	project, _ := manager.CreateProject(ctx, "Media", nil)
	src := filepath.Join(testsupport.BaseDir(cfg), "incoming", "voice.WAV")
	testsupport.WriteBytes(t, src, []byte("RIFF...."))

	first, err := manager.ImportMedia(ctx, project.ID, src)
	if err != nil {
		t.Fatalf("ImportMedia: %v", err)
	}
	second, err := manager.ImportMedia(ctx, project.ID, src)
	if err != nil {
		t.Fatalf("ImportMedia again: %v", err)
	}
	if first.FileType != projectdb.FileTypeAudio {
		t.Fatalf("expected audio, got %s", first.FileType)
	}
	if first.FilePath != "sources/voice.WAV" || second.FilePath != "sources/voice_1.WAV" {
		t.Fatalf("unexpected paths %q %q", first.FilePath, second.FilePath)
	}
	if first.Metadata["original_path"] != src {
		t.Fatalf("original path not recorded: %v", first.Metadata)
	}

	var placementID int64
	err = manager.UpdateStore(ctx, project.ID, func(store *projectdb.Store) error {
		var err error
		placementID, err = store.AddPlacement(ctx, projectdb.PlacementInput{MediaID: first.ID, EndTime: 1})
		return err
	})
	if err != nil {
		t.Fatalf("AddPlacement: %v", err)
	}

	if err := manager.RemoveMedia(ctx, project.ID, first.ID, true); err != nil {
		t.Fatalf("RemoveMedia: %v", err)
	}
	testsupport.AssertNotExists(t, workspace.MediaPath(project.Path, first))
	if _, err := os.Stat(workspace.MediaPath(project.Path, second)); err != nil {
		t.Fatalf("other media file must remain: %v", err)
	}
	err = manager.WithStore(ctx, project.ID, func(store *projectdb.Store) error {
		placements, err := store.ListPlacements(ctx)
		if err != nil {
			return err
		}
		for _, p := range placements {
			if p.ID == placementID {
				t.Errorf("placement %d should be cascaded away", placementID)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithStore: %v", err)
	}

	if err := manager.RemoveMedia(ctx, project.ID, second.ID, false); err != nil {
		t.Fatalf("RemoveMedia keep file: %v", err)
	}
	if _, err := os.Stat(workspace.MediaPath(project.Path, second)); err != nil {
		t.Fatalf("file should be kept: %v", err)
	}

	if _, err := manager.ImportMedia(ctx, project.ID, filepath.Join(t.TempDir(), "missing.mp4")); !errors.Is(err, failure.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportMediaTouchesProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	manager := testsupport.NewManager(t, cfg, nil)
	ctx := context.Background()

	older, _ := manager.CreateProject(ctx, "Older", nil)
	if _, err := manager.CreateProject(ctx, "Newer", nil); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	src := filepath.Join(testsupport.BaseDir(cfg), "still.png")
	testsupport.WriteFile(t, src, 16)
	if _, err := manager.ImportMedia(ctx, older.ID, src); err != nil {
		t.Fatalf("ImportMedia: %v", err)
	}

	projects, err := manager.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if projects[0].ID != older.ID {
		t.Fatalf("expected touched project first, got %s", projects[0].Name)
	}
}
