package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mixtape/internal/convert"
	"mixtape/internal/encoder"
	"mixtape/internal/history"
	"mixtape/internal/logging"
	"mixtape/internal/preflight"
	"mixtape/internal/targetdir"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <playlist>...",
		Short: "Convert the files referenced by playlists into the target",
		Long: `Read the named playlists, plan one destination per source file, and copy
or transcode each file into the target directory.

Files that already exist in the target are skipped, so an interrupted run can
simply be repeated. Individual conversion failures are listed at the end but do
not change the exit status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, flags, args)
		},
	}
	flags.bind(cmd)
	return cmd
}

func runConvert(cmd *cobra.Command, ctx *commandContext, flags *runFlags, playlists []string) error {
	prepared, err := flags.prepare(cmd, ctx, playlists)
	if err != nil {
		return err
	}
	cfg := prepared.cfg
	logger := prepared.logger

	if failed := preflight.Failed(preflight.RunAll(cfg, prepared.target)); len(failed) > 0 {
		return fmt.Errorf("%s: %s", failed[0].Name, failed[0].Detail)
	}
	if err := targetdir.RequireEmpty(prepared.target, flags.force); err != nil {
		return err
	}
	prepared.warnIfFAT(flags.mangle)

	lock, err := targetdir.Acquire(cfg.LockDir(), prepared.target)
	if err != nil {
		return err
	}
	logger.Debug("target locked", logging.String("lock", lock.Path()))
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("release target lock", logging.Error(err))
		}
	}()

	dispatcher, err := encoder.NewDispatcher(prepared.table, prepared.profile,
		encoder.WithLogger(logging.NewComponentLogger(logger, "encoder")))
	if err != nil {
		return err
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	driverOpts := []convert.Option{convert.WithLogger(logging.NewComponentLogger(logger, "convert"))}
	var (
		store *history.Store
		run   *history.Run
	)
	if cfg.History.Enabled {
		store, err = history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir or set [history] enabled = false"),
				logging.String(logging.FieldImpact, "this run is not recorded"),
			)
		} else {
			defer store.Close()
			run, err = store.StartRun(runCtx, history.RunInfo{
				Target:    prepared.target,
				Profile:   prepared.profile.Name,
				Layout:    prepared.layout.String(),
				Playlists: playlists,
				Planned:   len(prepared.result.Items),
			})
			if err != nil {
				logging.WarnWithContext(logger, "failed to start run record", "history_write_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this run is not recorded"),
				)
			} else {
				logger = logger.With(logging.String(logging.FieldRunID, run.ID))
				driverOpts = append(driverOpts,
					convert.WithLogger(logging.NewComponentLogger(logger, "convert")),
					convert.WithRecorder(store.Recorder(run.ID)),
				)
			}
		}
	}

	driver, err := convert.NewDriver(dispatcher, driverOpts...)
	if err != nil {
		return err
	}
	report, execErr := driver.Execute(runCtx, prepared.result.Items)

	if run != nil {
		status := history.RunCompleted
		if execErr != nil {
			status = history.RunInterrupted
		}
		if err := store.FinishRun(context.Background(), run.ID, status, report); err != nil {
			logger.Warn("failed to finish run record", logging.Error(err))
		}
	}

	colorize := shouldColorize(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), renderSummary(prepared, report, run, colorize))
	if len(report.Failures) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), renderFailures(report.Failures, shouldColorize(cmd.ErrOrStderr())))
	}

	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			logger.Warn("run interrupted", logging.Int("processed", report.Total()), logging.Int("planned", len(prepared.result.Items)))
		}
		return execErr
	}
	return nil
}
