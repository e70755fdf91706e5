package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mixtape/internal/plan"
	"mixtape/internal/targetdir"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "plan <playlist>...",
		Short: "Show what run would do without writing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prepared, err := flags.prepare(cmd, ctx, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if empty, err := targetdir.IsEmpty(prepared.target); err == nil && !empty && !flags.force {
				fmt.Fprintln(out, renderStatusLine("Target", statusWarn, "not empty; run would need --force", colorize))
			}
			prepared.warnIfFAT(flags.mangle)
			fmt.Fprint(out, renderPlan(prepared, colorize))
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func renderPlan(p *preparedRun, colorize bool) string {
	var b strings.Builder
	for _, line := range renderSectionHeader("Plan", colorize) {
		b.WriteString(line + "\n")
	}
	prefix := p.result.CommonPrefix
	if prefix == "" {
		prefix = "(none)"
	}
	lines := []struct {
		label string
		value string
	}{
		{"Target", p.target},
		{"Layout", describeLayout(p.layout)},
		{"Profile", fmt.Sprintf("%s (.%s)", p.profile.Name, p.profile.Extension)},
		{"Common prefix", prefix},
		{"Playlist entries", fmt.Sprintf("%d", p.records)},
	}
	for _, l := range lines {
		b.WriteString(renderStatusLine(l.label, statusInfo, l.value, colorize) + "\n")
	}
	if n := len(p.unmatched); n > 0 {
		b.WriteString(renderStatusLine("Translate", statusWarn, fmt.Sprintf("%s did not contain the prefix", formatCount(n, "origin")), colorize) + "\n")
	}

	items := p.result.Items
	if len(items) == 0 {
		b.WriteString("\nNothing to do.\n")
		return b.String()
	}

	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			planActionLabel(item),
			displayName(item.Origin),
			displayName(relativeToTarget(p.target, item.DestinationPath)),
			encoderLabel(item),
		})
	}
	b.WriteString("\n")
	b.WriteString(renderTable(
		[]string{"#", "Action", "Origin", "Destination", "Encoder"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	b.WriteString("\n")

	transcodes := 0
	for _, item := range items {
		if !item.Collision() && item.Action == plan.ActionTranscode {
			transcodes++
		}
	}
	fmt.Fprintf(&b, "\n%d to copy, %d to transcode, %s\n",
		p.result.Copies(),
		transcodes,
		formatCount(p.result.Collisions(), "collision"))
	return b.String()
}

func planActionLabel(item plan.PlannedItem) string {
	if item.Collision() {
		return "skip (collision)"
	}
	return item.Action.String()
}

func encoderLabel(item plan.PlannedItem) string {
	switch {
	case item.Action == plan.ActionCopy:
		return "-"
	case item.EncoderHint != "":
		return item.EncoderHint
	default:
		return "none"
	}
}

func relativeToTarget(target, path string) string {
	rel := strings.TrimPrefix(path, target)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" {
		return path
	}
	return rel
}

// displayName makes raw byte paths printable without altering valid UTF-8.
func displayName(path string) string {
	return strings.ToValidUTF8(path, "\uFFFD")
}
