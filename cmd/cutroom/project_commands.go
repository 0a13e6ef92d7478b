package main

import (
	"bufio"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cutroom/internal/api"
	"cutroom/internal/failure"
)

// resolveProject looks a project up by id or name and fails when it does
// not exist.
func resolveProject(cmd *cobra.Command, ctx *commandContext, ref string) (*api.ProjectService, *api.Project, error) {
	svc, err := ctx.projectService()
	if err != nil {
		return nil, nil, err
	}
	project, err := svc.Resolve(cmd.Context(), ref)
	if err != nil {
		return nil, nil, fmt.Errorf("look up project: %s", failure.Message(err))
	}
	if project == nil {
		return nil, nil, fmt.Errorf("project %q not found", ref)
	}
	return svc, project, nil
}

func newProjectCommand(ctx *commandContext) *cobra.Command {
	projectCmd := &cobra.Command{
		Use:   "project",
		Short: "Create, inspect and move projects",
	}

	projectCmd.AddCommand(
		newProjectCreateCommand(ctx),
		newProjectListCommand(ctx),
		newProjectShowCommand(ctx),
		newProjectRenameCommand(ctx),
		newProjectDeleteCommand(ctx),
		newProjectDuplicateCommand(ctx),
		newProjectExportCommand(ctx),
		newProjectImportCommand(ctx),
		newProjectCleanCommand(ctx),
		newProjectSettingsCommand(ctx),
	)
	return projectCmd
}

func newProjectCreateCommand(ctx *commandContext) *cobra.Command {
	var settingPairs []string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := parseKeyValues(settingPairs)
			if err != nil {
				return err
			}
			svc, err := ctx.projectService()
			if err != nil {
				return err
			}
			return printResult(cmd, svc.CreateProject(cmd.Context(), args[0], settings))
		},
	}
	cmd.Flags().StringArrayVar(&settingPairs, "setting", nil, "Initial registry setting as key=value (repeatable)")
	return cmd
}

func newProjectListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.projectService()
			if err != nil {
				return err
			}
			projects, err := svc.ListProjects(cmd.Context())
			if err != nil {
				return fmt.Errorf("list projects: %s", failure.Message(err))
			}
			if asJSON {
				return writeJSON(cmd, projects)
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects")
				return nil
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10),
					p.Name,
					ago(p.ModifiedAt),
					p.Path,
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Name", "Modified", "Path"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newProjectShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show project details, disk usage and contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			detail, err := svc.Describe(cmd.Context(), project.ID)
			if err != nil {
				return fmt.Errorf("describe project: %s", failure.Message(err))
			}
			if detail == nil {
				return fmt.Errorf("project %q not found", args[0])
			}
			if asJSON {
				return writeJSON(cmd, detail)
			}
			renderProjectDetail(cmd, detail)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderProjectDetail(cmd *cobra.Command, detail *api.ProjectDetail) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project %d: %s\n", detail.ID, detail.Name)
	fmt.Fprintf(out, "  Path:      %s\n", detail.Path)
	fmt.Fprintf(out, "  Created:   %s\n", ago(detail.CreatedAt))
	fmt.Fprintf(out, "  Modified:  %s\n", ago(detail.ModifiedAt))
	if detail.DirectoryMissing {
		fmt.Fprintln(out, "  Directory: missing")
		return
	}
	fmt.Fprintf(out, "  Size:      %s in %d files\n", formatBytes(detail.SizeBytes), detail.FileCount)
	if stats := detail.Stats; stats != nil {
		fmt.Fprintf(out, "  Media:     %d (video %d, audio %d, image %d, other %d)\n",
			stats.TotalMedia,
			stats.MediaByType["video"], stats.MediaByType["audio"],
			stats.MediaByType["image"], stats.MediaByType["other"],
		)
		fmt.Fprintf(out, "  Timeline:  %d placements on %d tracks, %d effects\n", stats.Placements, stats.Tracks, stats.Effects)
	}
	if len(detail.Settings) > 0 {
		fmt.Fprintln(out, "  Settings:")
		for _, key := range slices.Sorted(maps.Keys(detail.Settings)) {
			fmt.Fprintf(out, "    %s = %v\n", key, detail.Settings[key])
		}
	}
}

func newProjectRenameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id|name> <new-name>",
		Short: "Rename a project and its directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, svc.RenameProject(cmd.Context(), project.ID, args[1]))
		},
	}
}

func newProjectDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a project and its directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete project '%s' and %s?", project.Name, project.Path)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
				return nil
			}
			return printResult(cmd, svc.DeleteProject(cmd.Context(), project.ID))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func newProjectDuplicateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id|name> [new-name]",
		Short: "Copy a project under a new name (default {name}_copy)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			var newName string
			if len(args) == 2 {
				newName = args[1]
			}
			return printResult(cmd, svc.DuplicateProject(cmd.Context(), project.ID, newName))
		},
	}
}

func newProjectExportCommand(ctx *commandContext) *cobra.Command {
	var dest string
	cmd := &cobra.Command{
		Use:   "export <id|name>",
		Short: "Write a project to a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, svc.ExportProject(cmd.Context(), project.ID, strings.TrimSpace(dest)))
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination directory (defaults to paths.export_dir)")
	return cmd
}

func newProjectImportCommand(ctx *commandContext) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Register a project from a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.projectService()
			if err != nil {
				return err
			}
			return printResult(cmd, svc.ImportProject(cmd.Context(), args[0], name))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the archived name)")
	return cmd
}

func newProjectCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean <id|name>",
		Short: "Empty the project's temp and cache directories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, svc.CleanTemp(cmd.Context(), project.ID))
		},
	}
}

func newProjectSettingsCommand(ctx *commandContext) *cobra.Command {
	var setPairs []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "settings <id|name>",
		Short: "Show or update registry settings of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			if len(setPairs) > 0 {
				updates, err := parseKeyValues(setPairs)
				if err != nil {
					return err
				}
				return printResult(cmd, svc.UpdateProjectSettings(cmd.Context(), project.ID, updates))
			}
			settings, err := svc.ProjectSettings(cmd.Context(), project.ID)
			if err != nil {
				return fmt.Errorf("read settings: %s", failure.Message(err))
			}
			if asJSON {
				return writeJSON(cmd, settings)
			}
			out := cmd.OutOrStdout()
			if len(settings) == 0 {
				fmt.Fprintln(out, "No settings")
				return nil
			}
			rows := make([][]string, 0, len(settings))
			for _, key := range slices.Sorted(maps.Keys(settings)) {
				rows = append(rows, []string{key, fmt.Sprint(settings[key])})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Key", "Value"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "Update a setting as key=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
