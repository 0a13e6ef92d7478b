package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cutroom/internal/failure"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Manage a project's media files",
	}
	mediaCmd.AddCommand(
		newMediaAddCommand(ctx),
		newMediaListCommand(ctx),
		newMediaRemoveCommand(ctx),
	)
	return mediaCmd
}

func newMediaAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <project> <file>...",
		Short: "Copy files into the project's sources and record them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			var firstErr error
			for _, path := range args[1:] {
				if err := printResult(cmd, svc.ImportMedia(cmd.Context(), project.ID, path)); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		},
	}
}

func newMediaListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List media files, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			media, err := svc.ListMedia(cmd.Context(), project.ID)
			if err != nil {
				return fmt.Errorf("list media: %s", failure.Message(err))
			}
			if asJSON {
				return writeJSON(cmd, media)
			}
			out := cmd.OutOrStdout()
			if len(media) == 0 {
				fmt.Fprintln(out, "No media files")
				return nil
			}
			rows := make([][]string, 0, len(media))
			for _, m := range media {
				size := "-"
				if n, ok := m.Metadata["size_bytes"].(float64); ok {
					size = formatBytes(int64(n))
				}
				rows = append(rows, []string{
					strconv.FormatInt(m.ID, 10),
					m.FileName,
					m.FileType,
					formatSeconds(m.Duration),
					size,
					ago(m.CreatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "File", "Type", "Duration", "Size", "Added"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newMediaRemoveCommand(ctx *commandContext) *cobra.Command {
	var keepFile bool
	cmd := &cobra.Command{
		Use:   "remove <project> <media-id>",
		Short: "Remove a media file with its placements and effects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaID, err := parseID(args[1], "media id")
			if err != nil {
				return err
			}
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, svc.RemoveMedia(cmd.Context(), project.ID, mediaID, !keepFile))
		},
	}
	cmd.Flags().BoolVar(&keepFile, "keep-file", false, "Keep the copied file under sources/")
	return cmd
}
