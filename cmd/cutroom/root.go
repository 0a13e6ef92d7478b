package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cutroom",
		Short:         "Manage video editing projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newProjectCommand(ctx))
	rootCmd.AddCommand(newMediaCommand(ctx))
	rootCmd.AddCommand(newTimelineCommand(ctx))
	rootCmd.AddCommand(newEffectCommand(ctx))
	rootCmd.AddCommand(newSettingsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))

	return rootCmd
}

// execute runs the command tree once and releases shared resources.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmdCtx := newCommandContext()
	defer cmdCtx.close()

	cmd := newRootCommand(cmdCtx)
	cmd.SetIn(os.Stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
