package api

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"cutroom/internal/failure"
	"cutroom/internal/projectdb"
	"cutroom/internal/registry"
	"cutroom/internal/workspace"
)

// ProjectService exposes project lifecycle and store operations to callers.
type ProjectService struct {
	manager *workspace.Manager
}

// NewProjectService constructs a ProjectService around the provided manager.
func NewProjectService(manager *workspace.Manager) *ProjectService {
	if manager == nil {
		return nil
	}
	return &ProjectService{manager: manager}
}

// lookup maps a not-found error to (nil, nil).
func lookup(project *registry.Project, err error) (*Project, error) {
	if errors.Is(err, failure.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dto := FromProject(project)
	return &dto, nil
}

// ListProjects returns every project, most recently modified first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]Project, error) {
	projects, err := s.manager.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return FromProjects(projects), nil
}

// GetProject fetches a project by id; (nil, nil) when it does not exist.
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*Project, error) {
	return lookup(s.manager.Project(ctx, id))
}

// FindProject fetches a project by name; (nil, nil) when it does not exist.
func (s *ProjectService) FindProject(ctx context.Context, name string) (*Project, error) {
	project, err := s.manager.ProjectByName(ctx, name)
	if errors.Is(err, failure.ErrInvalidName) {
		return nil, nil
	}
	return lookup(project, err)
}

// Resolve finds a project from a reference that is either an id or a name.
// A numeric reference that matches no id is retried as a name.
func (s *ProjectService) Resolve(ctx context.Context, ref string) (*Project, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		project, err := s.GetProject(ctx, id)
		if err != nil || project != nil {
			return project, err
		}
	}
	return s.FindProject(ctx, ref)
}

// Describe returns a project with its disk usage and store statistics.
// Usage and statistics are left empty when the directory or store is gone.
func (s *ProjectService) Describe(ctx context.Context, id int64) (*ProjectDetail, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil || project == nil {
		return nil, err
	}
	detail := &ProjectDetail{Project: *project}

	usage, err := s.manager.ProjectUsage(ctx, id)
	switch {
	case errors.Is(err, failure.ErrNotFound):
		detail.DirectoryMissing = true
		return detail, nil
	case err != nil:
		return nil, err
	}
	detail.SizeBytes = usage.Bytes
	detail.FileCount = usage.Files

	err = s.manager.WithStore(ctx, id, func(store *projectdb.Store) error {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		converted := FromStats(stats)
		detail.Stats = &converted
		return nil
	})
	if err != nil && !errors.Is(err, failure.ErrNotFound) {
		return nil, err
	}
	return detail, nil
}

// CreateProject creates a project directory and registry row.
func (s *ProjectService) CreateProject(ctx context.Context, name string, settings map[string]any) Result {
	project, err := s.manager.CreateProject(ctx, name, settings)
	if err != nil {
		return failed(err)
	}
	return succeeded(project.ID, fmt.Sprintf("Project '%s' created", project.Name))
}

// RenameProject renames a project and its directory.
func (s *ProjectService) RenameProject(ctx context.Context, id int64, newName string) Result {
	project, err := s.manager.RenameProject(ctx, id, newName)
	if err != nil {
		return failed(err)
	}
	return succeeded(project.ID, fmt.Sprintf("Project renamed to '%s'", project.Name))
}

// DeleteProject removes a project's registry row and directory.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) Result {
	if err := s.manager.DeleteProject(ctx, id); err != nil {
		return failed(err)
	}
	return succeeded(id, "Project deleted")
}

// DuplicateProject copies a project. An empty newName selects "{name}_copy".
func (s *ProjectService) DuplicateProject(ctx context.Context, id int64, newName string) Result {
	project, err := s.manager.DuplicateProject(ctx, id, newName)
	if err != nil {
		return failed(err)
	}
	return succeeded(project.ID, fmt.Sprintf("Project duplicated as '%s'", project.Name))
}

// ExportProject writes a zip archive of the project into destDir; an empty
// destDir selects the configured export directory.
func (s *ProjectService) ExportProject(ctx context.Context, id int64, destDir string) Result {
	path, err := s.manager.ExportProject(ctx, id, destDir)
	if err != nil {
		return failed(err)
	}
	result := succeeded(id, "Project exported to "+path)
	result.Path = path
	return result
}

// ImportProject registers a project from a zip archive.
func (s *ProjectService) ImportProject(ctx context.Context, archivePath, name string) Result {
	project, err := s.manager.ImportProject(ctx, archivePath, name)
	if err != nil {
		return failed(err)
	}
	result := succeeded(project.ID, fmt.Sprintf("Project '%s' imported", project.Name))
	result.Path = project.Path
	return result
}

// CleanTemp empties the project's temp and cache directories.
func (s *ProjectService) CleanTemp(ctx context.Context, id int64) Result {
	removed, err := s.manager.CleanTempFiles(ctx, id)
	if err != nil {
		return failed(err)
	}
	return succeeded(id, fmt.Sprintf("Removed %d temporary entries", removed))
}

// ProjectSettings returns the registry settings map of a project.
func (s *ProjectService) ProjectSettings(ctx context.Context, id int64) (map[string]any, error) {
	settings, err := s.manager.Settings(ctx, id)
	if err != nil {
		return nil, err
	}
	return nonNilMap(settings), nil
}

// UpdateProjectSettings merges updates into the registry settings map.
func (s *ProjectService) UpdateProjectSettings(ctx context.Context, id int64, updates map[string]any) Result {
	current, err := s.manager.Settings(ctx, id)
	if err != nil {
		return failed(err)
	}
	merged := make(map[string]any, len(current)+len(updates))
	maps.Copy(merged, current)
	maps.Copy(merged, updates)
	if err := s.manager.UpdateSettings(ctx, id, merged); err != nil {
		return failed(err)
	}
	return succeeded(id, fmt.Sprintf("Updated %d project settings", len(updates)))
}
