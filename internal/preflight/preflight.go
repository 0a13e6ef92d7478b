package preflight

import (
	"cutroom/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Projects directory", cfg.Paths.ProjectsDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Staging directory", cfg.StagingDir()),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckFreeSpace("Projects free space", cfg.Paths.ProjectsDir, HeadroomBytes(cfg.Storage.MinFreeMiB)))
	return results
}
