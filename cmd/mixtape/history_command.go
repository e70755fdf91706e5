package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mixtape/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ShortID(),
						formatTimestamp(run.StartedAt),
						string(run.Status),
						run.Target,
						run.Profile,
						run.Layout,
						fmt.Sprintf("%d", run.Copied),
						fmt.Sprintf("%d", run.Converted),
						fmt.Sprintf("%d", run.Skipped),
						fmt.Sprintf("%d", run.Failed),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Started", "Status", "Target", "Profile", "Layout", "Copied", "Converted", "Skipped", "Failed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var failedOnly bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the items of one run (a unique id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				items, err := store.RunItems(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Run "+run.ShortID(), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("ID", statusInfo, run.ID, colorize))
				fmt.Fprintln(out, renderStatusLine("Started", statusInfo, formatTimestamp(run.StartedAt), colorize))
				if run.FinishedAt != nil {
					fmt.Fprintln(out, renderStatusLine("Finished", statusInfo, formatTimestamp(*run.FinishedAt), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Status", runStatusKind(run), string(run.Status), colorize))
				fmt.Fprintln(out, renderStatusLine("Target", statusInfo, run.Target, colorize))
				fmt.Fprintln(out, renderStatusLine("Playlists", statusInfo, fmt.Sprintf("%v", run.Playlists), colorize))
				fmt.Fprintln(out, countLine("Copied", run.Copied, statusOK, colorize))
				fmt.Fprintln(out, countLine("Converted", run.Converted, statusOK, colorize))
				fmt.Fprintln(out, countLine("Skipped", run.Skipped, statusInfo, colorize))
				fmt.Fprintln(out, countLine("Failed", run.Failed, failureKind(run.Failed), colorize))

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					if failedOnly && item.Error == "" {
						continue
					}
					code := "-"
					if item.ExitCode != nil {
						code = fmt.Sprintf("%d", *item.ExitCode)
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", item.Seq),
						string(item.Status),
						displayName(item.Origin),
						displayName(item.Destination),
						dashIfEmpty(item.Encoder),
						code,
						dashIfEmpty(item.Error),
					})
				}
				fmt.Fprintln(out)
				if len(rows) == 0 {
					fmt.Fprintln(out, "No items recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Status", "Origin", "Destination", "Encoder", "Exit", "Error"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed items")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("run history is disabled ([history] enabled = false)")
	}
	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func runStatusKind(run *history.Run) statusKind {
	switch {
	case run.Status == history.RunInterrupted:
		return statusWarn
	case run.Failed > 0:
		return statusError
	case run.Status == history.RunCompleted:
		return statusOK
	default:
		return statusInfo
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
