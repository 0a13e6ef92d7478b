package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"cutroom/internal/failure"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write project-local settings",
	}
	settingsCmd.AddCommand(newSettingsGetCommand(ctx), newSettingsSetCommand(ctx))
	return settingsCmd
}

func newSettingsGetCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <project>",
		Short: "Show the project's stored settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			settings, err := svc.StoreSettings(cmd.Context(), project.ID)
			if err != nil {
				return fmt.Errorf("read settings: %s", failure.Message(err))
			}
			if asJSON {
				return writeJSON(cmd, settings)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(settings))
			for _, key := range slices.Sorted(maps.Keys(settings)) {
				rows = append(rows, []string{key, settings[key]})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Key", "Value"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <project> <key> <value>",
		Short: "Insert or update a stored setting",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, svc.SetStoreSetting(cmd.Context(), project.ID, args[1], args[2]))
		},
	}
}
