package api

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutroom/internal/testsupport"
)

func newTestService(t *testing.T) *ProjectService {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return NewProjectService(testsupport.NewManager(t, cfg, nil))
}

func mustCreate(t *testing.T, svc *ProjectService, name string) int64 {
	t.Helper()
	result := svc.CreateProject(context.Background(), name, nil)
	if !result.OK {
		t.Fatalf("CreateProject(%q): %s", name, result.Message)
	}
	return result.ID
}

func mustImportMedia(t *testing.T, svc *ProjectService, projectID int64, name string) int64 {
	t.Helper()
	src := filepath.Join(t.TempDir(), name)
	testsupport.WriteFile(t, src, 2048)
	result := svc.ImportMedia(context.Background(), projectID, src)
	if !result.OK {
		t.Fatalf("ImportMedia(%q): %s", name, result.Message)
	}
	return result.ID
}

func TestNewProjectServiceNilManager(t *testing.T) {
	if svc := NewProjectService(nil); svc != nil {
		t.Fatalf("expected nil service, got %#v", svc)
	}
}

func TestCreateProjectResults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first := svc.CreateProject(ctx, "Holiday Cut", map[string]any{"fps": 24})
	if !first.OK || first.ID == 0 {
		t.Fatalf("unexpected create result: %+v", first)
	}
	if first.Message != "Project 'Holiday Cut' created" {
		t.Fatalf("Message = %q", first.Message)
	}

	dup := svc.CreateProject(ctx, "Holiday Cut", nil)
	if dup.OK {
		t.Fatal("expected duplicate create to fail")
	}
	if !strings.Contains(dup.Message, "already exists") {
		t.Fatalf("duplicate message = %q", dup.Message)
	}

	invalid := svc.CreateProject(ctx, "///", nil)
	if invalid.OK || !strings.HasPrefix(invalid.Message, "Invalid name") {
		t.Fatalf("invalid name result = %+v", invalid)
	}

	projects, err := svc.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 || projects[0].Settings["fps"] == nil {
		t.Fatalf("unexpected projects: %+v", projects)
	}
	if projects[0].CreatedAt == "" || projects[0].ModifiedAt == "" {
		t.Fatalf("expected formatted timestamps: %+v", projects[0])
	}
}

func TestResolveByIDAndName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Alpha")
	numeric := mustCreate(t, svc, "2024")

	tests := []struct {
		ref    string
		wantID int64
	}{
		{ref: "Alpha", wantID: id},
		{ref: " Alpha ", wantID: id},
		{ref: "2024", wantID: numeric},
		{ref: "missing", wantID: 0},
	}
	for _, tc := range tests {
		project, err := svc.Resolve(ctx, tc.ref)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tc.ref, err)
		}
		switch {
		case tc.wantID == 0 && project != nil:
			t.Fatalf("Resolve(%q) = %+v, want nil", tc.ref, project)
		case tc.wantID != 0 && (project == nil || project.ID != tc.wantID):
			t.Fatalf("Resolve(%q) = %+v, want id %d", tc.ref, project, tc.wantID)
		}
	}

	byID, err := svc.Resolve(ctx, "1")
	if err != nil || byID == nil || byID.ID != 1 {
		t.Fatalf("Resolve(\"1\") = %+v, %v", byID, err)
	}
}

func TestGetProjectMissingReturnsNil(t *testing.T) {
	svc := newTestService(t)
	project, err := svc.GetProject(context.Background(), 42)
	if err != nil || project != nil {
		t.Fatalf("GetProject = %+v, %v; want nil, nil", project, err)
	}
	detail, err := svc.Describe(context.Background(), 42)
	if err != nil || detail != nil {
		t.Fatalf("Describe = %+v, %v; want nil, nil", detail, err)
	}
}

func TestDescribeIncludesUsageAndStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Detail")
	mediaID := mustImportMedia(t, svc, id, "clip.mp4")

	if r := svc.AddPlacement(ctx, id, PlacementRequest{MediaID: mediaID, EndTime: 4, TrackNumber: 1}); !r.OK {
		t.Fatalf("AddPlacement: %s", r.Message)
	}

	detail, err := svc.Describe(ctx, id)
	if err != nil || detail == nil {
		t.Fatalf("Describe: %+v, %v", detail, err)
	}
	if detail.DirectoryMissing {
		t.Fatal("directory should exist")
	}
	if detail.SizeBytes < 2048 || detail.FileCount < 2 {
		t.Fatalf("unexpected usage: size=%d files=%d", detail.SizeBytes, detail.FileCount)
	}
	if detail.Stats == nil {
		t.Fatal("expected store stats")
	}
	if detail.Stats.TotalMedia != 1 || detail.Stats.MediaByType["video"] != 1 || detail.Stats.Placements != 1 {
		t.Fatalf("unexpected stats: %+v", detail.Stats)
	}
	if _, ok := detail.Stats.MediaByType["image"]; !ok {
		t.Fatalf("expected zero entries for every type: %+v", detail.Stats.MediaByType)
	}
}

func TestDescribeFlagsMissingDirectory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Vanished")
	project, err := svc.GetProject(ctx, id)
	if err != nil || project == nil {
		t.Fatalf("GetProject: %+v, %v", project, err)
	}
	if err := os.RemoveAll(project.Path); err != nil {
		t.Fatalf("remove project dir: %v", err)
	}

	detail, err := svc.Describe(ctx, id)
	if err != nil || detail == nil {
		t.Fatalf("Describe: %+v, %v", detail, err)
	}
	if !detail.DirectoryMissing || detail.Stats != nil {
		t.Fatalf("expected missing directory without stats: %+v", detail)
	}
}

func TestLifecycleResults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Source")

	renamed := svc.RenameProject(ctx, id, "Renamed")
	if !renamed.OK || renamed.ID != id || renamed.Message != "Project renamed to 'Renamed'" {
		t.Fatalf("rename result = %+v", renamed)
	}

	dup := svc.DuplicateProject(ctx, id, "")
	if !dup.OK || dup.ID == id {
		t.Fatalf("duplicate result = %+v", dup)
	}
	copyProject, err := svc.GetProject(ctx, dup.ID)
	if err != nil || copyProject == nil || copyProject.Name != "Renamed_copy" {
		t.Fatalf("duplicate project = %+v, %v", copyProject, err)
	}

	clean := svc.CleanTemp(ctx, id)
	if !clean.OK || clean.Message != "Removed 0 temporary entries" {
		t.Fatalf("clean result = %+v", clean)
	}

	deleted := svc.DeleteProject(ctx, id)
	if !deleted.OK {
		t.Fatalf("delete result = %+v", deleted)
	}
	again := svc.DeleteProject(ctx, id)
	if again.OK || !strings.HasPrefix(again.Message, "Not found") {
		t.Fatalf("second delete result = %+v", again)
	}
}

func TestExportImportResults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Travel")
	mustImportMedia(t, svc, id, "beach.mov")

	exported := svc.ExportProject(ctx, id, t.TempDir())
	if !exported.OK || exported.Path == "" {
		t.Fatalf("export result = %+v", exported)
	}
	if _, err := os.Stat(exported.Path); err != nil {
		t.Fatalf("archive missing: %v", err)
	}

	conflict := svc.ImportProject(ctx, exported.Path, "")
	if conflict.OK || !strings.Contains(conflict.Message, "already exists") {
		t.Fatalf("expected conflict importing over existing name: %+v", conflict)
	}

	imported := svc.ImportProject(ctx, exported.Path, "Travel Copy")
	if !imported.OK || imported.ID == id {
		t.Fatalf("import result = %+v", imported)
	}
	media, err := svc.ListMedia(ctx, imported.ID)
	if err != nil {
		t.Fatalf("ListMedia: %v", err)
	}
	if len(media) != 1 || media[0].FileName != "beach.mov" {
		t.Fatalf("unexpected imported media: %+v", media)
	}
}

func TestProjectSettingsMerge(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Settings")
	if r := svc.UpdateProjectSettings(ctx, id, map[string]any{"theme": "dark"}); !r.OK {
		t.Fatalf("first update: %s", r.Message)
	}
	if r := svc.UpdateProjectSettings(ctx, id, map[string]any{"zoom": 2.0}); !r.OK {
		t.Fatalf("second update: %s", r.Message)
	}

	settings, err := svc.ProjectSettings(ctx, id)
	if err != nil {
		t.Fatalf("ProjectSettings: %v", err)
	}
	if settings["theme"] != "dark" || settings["zoom"] != 2.0 {
		t.Fatalf("settings not merged: %v", settings)
	}

	if r := svc.UpdateProjectSettings(ctx, 999, map[string]any{"x": 1}); r.OK {
		t.Fatal("expected failure for missing project")
	}
}

func TestTimelineAndEffects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Edit")
	mediaID := mustImportMedia(t, svc, id, "take1.mp4")

	missing := svc.AddPlacement(ctx, id, PlacementRequest{MediaID: mediaID + 100, EndTime: 1})
	if missing.OK || !strings.HasPrefix(missing.Message, "Not found") {
		t.Fatalf("placement with missing media = %+v", missing)
	}
	negative := svc.AddPlacement(ctx, id, PlacementRequest{MediaID: mediaID, EndTime: 1, TrackNumber: -1})
	if negative.OK || !strings.HasPrefix(negative.Message, "Invalid input") {
		t.Fatalf("placement on negative track = %+v", negative)
	}

	placed := svc.AddPlacement(ctx, id, PlacementRequest{MediaID: mediaID, StartTime: 1, EndTime: 3, TrackNumber: 0, Position: 5})
	if !placed.OK {
		t.Fatalf("AddPlacement: %s", placed.Message)
	}
	placements, err := svc.ListPlacements(ctx, id)
	if err != nil {
		t.Fatalf("ListPlacements: %v", err)
	}
	if len(placements) != 1 || placements[0].FileName != "take1.mp4" || placements[0].FileType != "video" {
		t.Fatalf("unexpected placements: %+v", placements)
	}

	later, earlier := 2.0, 0.5
	if r := svc.AddEffect(ctx, id, EffectRequest{PlacementID: placed.ID, EffectType: "fade", StartTime: &later}); !r.OK {
		t.Fatalf("AddEffect fade: %s", r.Message)
	}
	blur := svc.AddEffect(ctx, id, EffectRequest{PlacementID: placed.ID, EffectType: "blur", Parameters: map[string]any{"radius": 3.0}, StartTime: &earlier})
	if !blur.OK {
		t.Fatalf("AddEffect blur: %s", blur.Message)
	}
	if r := svc.AddEffect(ctx, id, EffectRequest{PlacementID: placed.ID, EffectType: "  "}); r.OK {
		t.Fatal("expected empty effect type to fail")
	}

	effects, err := svc.ListEffects(ctx, id, placed.ID)
	if err != nil {
		t.Fatalf("ListEffects: %v", err)
	}
	if len(effects) != 2 || effects[0].EffectType != "blur" || effects[1].EffectType != "fade" {
		t.Fatalf("unexpected effect order: %+v", effects)
	}
	if effects[0].Parameters["radius"] != 3.0 {
		t.Fatalf("parameters not preserved: %+v", effects[0].Parameters)
	}

	if r := svc.RemoveEffect(ctx, id, blur.ID); !r.OK {
		t.Fatalf("RemoveEffect: %s", r.Message)
	}
	if r := svc.RemovePlacement(ctx, id, placed.ID); !r.OK {
		t.Fatalf("RemovePlacement: %s", r.Message)
	}
	effects, err = svc.ListEffects(ctx, id, placed.ID)
	if err != nil || len(effects) != 0 {
		t.Fatalf("expected effects cascaded away: %+v, %v", effects, err)
	}
	if r := svc.RemovePlacement(ctx, id, placed.ID); r.OK {
		t.Fatal("expected removing a missing placement to fail")
	}
}

func TestRemoveMediaResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Prune")
	mediaID := mustImportMedia(t, svc, id, "song.mp3")

	if r := svc.RemoveMedia(ctx, id, mediaID, true); !r.OK {
		t.Fatalf("RemoveMedia: %s", r.Message)
	}
	media, err := svc.ListMedia(ctx, id)
	if err != nil || len(media) != 0 {
		t.Fatalf("expected no media: %+v, %v", media, err)
	}
	if r := svc.RemoveMedia(ctx, id, mediaID, false); r.OK {
		t.Fatal("expected second removal to fail")
	}
}

func TestStoreSettings(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	id := mustCreate(t, svc, "Local")

	settings, err := svc.StoreSettings(ctx, id)
	if err != nil {
		t.Fatalf("StoreSettings: %v", err)
	}
	if settings["framerate"] != "30" {
		t.Fatalf("expected seeded framerate, got %v", settings)
	}

	if r := svc.SetStoreSetting(ctx, id, "framerate", "60"); !r.OK || r.Message != "Set framerate = 60" {
		t.Fatalf("SetStoreSetting = %+v", r)
	}
	if r := svc.SetStoreSetting(ctx, id, " ", "x"); r.OK || !strings.HasPrefix(r.Message, "Invalid input") {
		t.Fatalf("empty key result = %+v", r)
	}
	settings, err = svc.StoreSettings(ctx, id)
	if err != nil || settings["framerate"] != "60" {
		t.Fatalf("settings after upsert = %v, %v", settings, err)
	}

	if _, err := svc.StoreSettings(ctx, 999); err == nil {
		t.Fatal("expected error for missing project")
	}
}
