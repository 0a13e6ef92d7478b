package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cutroom/internal/preflight"
	"cutroom/internal/registry"
	"cutroom/internal/staging"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, free space and the project registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(cfg)
			healthy := true
			rows := make([][]string, 0, len(results)+1)
			for _, r := range results {
				healthy = healthy && r.Passed
				rows = append(rows, []string{r.Name, status(r.Passed), r.Detail})
			}

			health := checkRegistry(cmd, cfg.RegistryPath())
			registryOK := health.Error == "" && health.IntegrityCheck && len(health.MissingColumns) == 0
			healthy = healthy && registryOK
			rows = append(rows, []string{"Project registry", status(registryOK), registryDetail(health)})

			rows = append(rows, []string{"Import staging", status(true), stagingDetail(cfg.StagingDir())})

			fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))
			if !healthy {
				fmt.Fprintln(out, "Some checks failed")
				return errResultFailed
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func checkRegistry(cmd *cobra.Command, path string) registry.DatabaseHealth {
	store, err := registry.Open(path)
	if err != nil {
		return registry.DatabaseHealth{DBPath: path, Error: err.Error()}
	}
	defer store.Close()
	health, err := store.CheckHealth(cmd.Context())
	if err != nil && health.Error == "" {
		health.Error = err.Error()
	}
	return health
}

func registryDetail(h registry.DatabaseHealth) string {
	switch {
	case h.Error != "":
		return h.Error
	case len(h.MissingColumns) > 0:
		return "missing columns: " + strings.Join(h.MissingColumns, ", ")
	case !h.IntegrityCheck:
		return "integrity check failed"
	default:
		return fmt.Sprintf("%d projects, %d migrations, integrity ok: %s", h.TotalProjects, len(h.Migrations), yesNo(h.IntegrityCheck))
	}
}

// stagingDetail is informational; leftovers are swept by the next import.
func stagingDetail(dir string) string {
	dirs, err := staging.ListDirectories(dir)
	if err != nil {
		return err.Error()
	}
	if len(dirs) == 0 {
		return "empty"
	}
	var total int64
	for _, d := range dirs {
		total += d.Size
	}
	return fmt.Sprintf("%d leftover directories, %s", len(dirs), formatBytes(total))
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}
