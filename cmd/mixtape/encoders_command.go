package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mixtape/internal/encoder"
	"mixtape/internal/preflight"
)

func newEncodersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encoders",
		Short: "List encoders in preference order with availability and readable formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, profiles, err := ctx.encoders()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			statuses := preflight.CheckEncoders(table)

			for _, line := range renderSectionHeader("Encoders", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range encoderLines(statuses, colorize) {
				fmt.Fprintln(out, line)
			}

			rows := make([][]string, 0, len(statuses))
			for i, s := range statuses {
				binary := s.Command
				if s.Available {
					binary = s.Path
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					s.Encoder.Name,
					binary,
					yesNo(s.Available),
					strings.Join(s.Encoder.Extensions, " "),
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Encoder", "Binary", "Available", "Reads"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Profile", "Extension", "Arguments"},
				profileRows(profiles),
				nil,
			))
			return nil
		},
	}
}

func encoderLines(statuses []preflight.EncoderStatus, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	var missing []string
	for _, s := range statuses {
		if s.Available {
			lines = append(lines, renderStatusLine(s.Encoder.Name, statusOK, fmt.Sprintf("Ready (command: %s)", s.Path), colorize))
			continue
		}
		lines = append(lines, renderStatusLine(s.Encoder.Name, statusWarn, s.Detail, colorize))
		missing = append(missing, s.Encoder.Name)
	}
	if len(statuses) > 0 && len(missing) == len(statuses) {
		lines = append(lines, renderStatusLine("Summary", statusError, "no encoder available; only copies will succeed", colorize))
	} else if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Summary", statusWarn, fmt.Sprintf("missing %s; formats only they read will fail", strings.Join(missing, ", ")), colorize))
	}
	return lines
}

func profileRows(profiles encoder.ProfileSet) [][]string {
	rows := make([][]string, 0, len(profiles))
	for _, name := range profiles.Names() {
		p := profiles[name]
		var args []string
		for _, enc := range encoder.KnownEncoders() {
			if a := p.ArgsFor(enc); len(a) > 0 {
				args = append(args, fmt.Sprintf("%s: %s", enc, strings.Join(a, " ")))
			}
		}
		argText := "-"
		if len(args) > 0 {
			argText = strings.Join(args, "; ")
		}
		rows = append(rows, []string{name, p.Extension, argText})
	}
	return rows
}
