package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cutroom/internal/api"
	"cutroom/internal/failure"
)

func newEffectCommand(ctx *commandContext) *cobra.Command {
	effectCmd := &cobra.Command{
		Use:   "effect",
		Short: "Attach effects to timeline placements",
	}
	effectCmd.AddCommand(
		newEffectAddCommand(ctx),
		newEffectListCommand(ctx),
		newEffectRemoveCommand(ctx),
	)
	return effectCmd
}

func newEffectAddCommand(ctx *commandContext) *cobra.Command {
	var (
		paramPairs []string
		start, end float64
	)
	cmd := &cobra.Command{
		Use:   "add <project> <placement-id> <type>",
		Short: "Attach an effect to a placement",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			placementID, err := parseID(args[1], "placement id")
			if err != nil {
				return err
			}
			params, err := parseKeyValues(paramPairs)
			if err != nil {
				return err
			}
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			req := api.EffectRequest{
				PlacementID: placementID,
				EffectType:  args[2],
				Parameters:  params,
			}
			if cmd.Flags().Changed("start") {
				req.StartTime = &start
			}
			if cmd.Flags().Changed("end") {
				req.EndTime = &end
			}
			return printResult(cmd, svc.AddEffect(cmd.Context(), project.ID, req))
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Effect parameter as key=value (repeatable)")
	cmd.Flags().Float64Var(&start, "start", 0, "Effect start within the placement, in seconds")
	cmd.Flags().Float64Var(&end, "end", 0, "Effect end within the placement, in seconds")
	return cmd
}

func newEffectListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <project> <placement-id>",
		Short: "List a placement's effects ordered by start time",
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
			effects, err := svc.ListEffects(cmd.Context(), project.ID, placementID)
			if err != nil {
				return fmt.Errorf("list effects: %s", failure.Message(err))
			}
			if asJSON {
				return writeJSON(cmd, effects)
			}
			out := cmd.OutOrStdout()
			if len(effects) == 0 {
				fmt.Fprintln(out, "No effects")
				return nil
			}
			rows := make([][]string, 0, len(effects))
			for _, e := range effects {
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					e.EffectType,
					formatSeconds(e.StartTime),
					formatSeconds(e.EndTime),
					formatParams(e.Parameters),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Type", "Start", "End", "Parameters"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func formatParams(params map[string]any) string {
	if len(params) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(params))
	for _, key := range slices.Sorted(maps.Keys(params)) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, params[key]))
	}
	return strings.Join(parts, " ")
}

func newEffectRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project> <effect-id>",
		Short: "Remove an effect",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			effectID, err := parseID(args[1], "effect id")
			if err != nil {
				return err
			}
			svc, project, err := resolveProject(cmd, ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, svc.RemoveEffect(cmd.Context(), project.ID, effectID))
		},
	}
}
