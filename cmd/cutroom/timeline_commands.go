package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cutroom/internal/api"
	"cutroom/internal/failure"
)

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	timelineCmd := &cobra.Command{
		Use:   "timeline",
		Short: "Place media on the project timeline",
	}
	timelineCmd.AddCommand(
		newTimelineAddCommand(ctx),
		newTimelineListCommand(ctx),
		newTimelineRemoveCommand(ctx),
	)
	return timelineCmd
}

func newTimelineAddCommand(ctx *commandContext) *cobra.Command {
	var req api.PlacementRequest
	cmd := &cobra.Command{
		Use:   "add <project> <media-id>",
		Short: "Place a trimmed window of a media file on a track",
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
			req.MediaID = mediaID
			return printResult(cmd, svc.AddPlacement(cmd.Context(), project.ID, req))
		},
	}
	cmd.Flags().Float64Var(&req.StartTime, "start", 0, "Trim start within the media, in seconds")
	cmd.Flags().Float64Var(&req.EndTime, "end", 0, "Trim end within the media, in seconds")
	cmd.Flags().IntVar(&req.TrackNumber, "track", 0, "Track number (0 or greater)")
	cmd.Flags().Float64Var(&req.Position, "position", 0, "Position on the track, in seconds")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newTimelineListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List placements ordered by track and position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			placements, err := svc.ListPlacements(cmd.Context(), project.ID)
			if err != nil {
				return fmt.Errorf("list timeline: %s", failure.Message(err))
			}
			if asJSON {
				return writeJSON(cmd, placements)
			}
			out := cmd.OutOrStdout()
			if len(placements) == 0 {
				fmt.Fprintln(out, "Timeline is empty")
				return nil
			}
			rows := make([][]string, 0, len(placements))
			for _, p := range placements {
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10),
					strconv.Itoa(p.TrackNumber),
					formatSeconds(&p.Position),
					p.FileName,
					formatSeconds(&p.StartTime) + " - " + formatSeconds(&p.EndTime),
					strconv.FormatInt(p.MediaID, 10),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Track", "Position", "Media", "Window", "Media ID"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newTimelineRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project> <placement-id>",
		Short: "Remove a placement and its effects",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			placementID, err := parseID(args[1], "placement id")
			if err != nil {
				return err
			}
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, svc.RemovePlacement(cmd.Context(), project.ID, placementID))
		},
	}
}
