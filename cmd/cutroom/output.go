package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cutroom/internal/api"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResult prints the result message and turns a failed result into
// errResultFailed so the process exits non-zero.
func printResult(cmd *cobra.Command, result api.Result) error {
	if result.OK {
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Error: "+result.Message)
	return errResultFailed
}

// ago renders an API timestamp relative to now, e.g. "3 minutes ago".
func ago(stamp string) string {
	if stamp == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return humanize.Time(t)
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func formatSeconds(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "s"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// parseKeyValues turns k=v pairs into a map. Values that parse as integers,
// floats or booleans keep that type.
func parseKeyValues(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		out[key] = typedValue(strings.TrimSpace(value))
	}
	return out, nil
}

func typedValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func parseID(raw, label string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", label, raw)
	}
	return id, nil
}
