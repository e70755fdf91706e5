package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mixtape/internal/encoder"
	"mixtape/internal/fileutil"
	"mixtape/internal/logging"
	"mixtape/internal/plan"
)

// Transcoder runs one encoder job.
type Transcoder interface {
	Transcode(ctx context.Context, job encoder.Job) (encoder.Result, error)
}

// Recorder persists item outcomes as they happen.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome Outcome, failure *Failure) error
}

// Option configures the driver.
type Option func(*Driver)

// WithRecorder attaches an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		d.recorder = r
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Driver executes planned items sequentially.
type Driver struct {
	transcoder Transcoder
	recorder   Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewDriver constructs a driver around the given transcoder.
func NewDriver(transcoder Transcoder, opts ...Option) (*Driver, error) {
	if transcoder == nil {
		return nil, errors.New("transcoder required")
	}
	d := &Driver{
		transcoder: transcoder,
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Execute processes items in order. It only returns an error when ctx is
// cancelled; per-item failures are reported in the Report.
func (d *Driver) Execute(ctx context.Context, items []plan.PlannedItem) (Report, error) {
	var report Report
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		started := d.now()
		outcome, failure := d.executeItem(ctx, item)
		outcome.Duration = d.now().Sub(started)
		if failure != nil {
			report.Failures = append(report.Failures, *failure)
		}
		report.add(outcome)
		d.record(ctx, outcome, failure)
	}
	return report, nil
}

func (d *Driver) executeItem(ctx context.Context, item plan.PlannedItem) (Outcome, *Failure) {
	logger := d.logger.With(
		logging.String(logging.FieldOrigin, item.Origin),
		logging.String(logging.FieldDestination, item.DestinationPath),
	)
	outcome := Outcome{Item: item}

	if item.Collision() {
		logger.Info("destination already claimed; skipping",
			logging.String("claimed_by", item.CollidesWith),
			logging.String(logging.FieldEventType, "item_collision"),
		)
		outcome.Status = StatusSkippedCollision
		return outcome, nil
	}
	if fileutil.Exists(item.DestinationPath) {
		logger.Debug("destination exists; skipping")
		outcome.Status = StatusSkippedExists
		return outcome, nil
	}
	if !fileutil.Exists(item.Origin) {
		logging.WarnWithContext(logger, "origin missing; skipping", "origin_missing",
			logging.String(logging.FieldPlaylist, item.Playlist),
			logging.String(logging.FieldErrorHint, "check the playlist entry or --translate-from/--translate-to"),
			logging.String(logging.FieldImpact, "item not written"),
		)
		outcome.Status = StatusSkippedMissing
		return outcome, nil
	}
	if err := os.MkdirAll(item.DestinationDir, 0o755); err != nil {
		return d.fail(logger, outcome, fmt.Errorf("create destination directory: %w", err), encoder.Result{ExitCode: -1})
	}

	if item.Action == plan.ActionCopy {
		if err := fileutil.CopyFileAtomic(item.Origin, item.DestinationPath); err != nil {
			return d.fail(logger, outcome, fmt.Errorf("copy: %w", err), encoder.Result{ExitCode: -1})
		}
		logger.Info("copied")
		outcome.Status = StatusCopied
		return outcome, nil
	}

	partial := fileutil.PartialPath(item.DestinationPath)
	if err := os.Remove(partial); err != nil && !errors.Is(err, os.ErrNotExist) {
		return d.fail(logger, outcome, fmt.Errorf("remove stale partial: %w", err), encoder.Result{ExitCode: -1})
	}
	res, err := d.transcoder.Transcode(ctx, encoder.Job{
		Origin:      item.Origin,
		Destination: partial,
		Extension:   item.Extension,
	})
	outcome.Encoder = res.Encoder
	if err != nil {
		_ = os.Remove(partial)
		return d.fail(logger, outcome, err, res)
	}
	if err := fileutil.Promote(partial, item.DestinationPath); err != nil {
		return d.fail(logger, outcome, err, res)
	}
	logger.Info("converted", logging.String(logging.FieldEncoder, res.Encoder))
	outcome.Status = StatusConverted
	return outcome, nil
}

func (d *Driver) fail(logger *slog.Logger, outcome Outcome, err error, res encoder.Result) (Outcome, *Failure) {
	outcome.Status = StatusFailed
	outcome.Err = err
	failure := &Failure{
		Origin:      outcome.Item.Origin,
		Destination: outcome.Item.DestinationPath,
		Encoder:     res.Encoder,
		Stdout:      res.Stdout,
		Stderr:      res.Stderr,
		Err:         err,
	}
	if res.ExitCode >= 0 {
		code := res.ExitCode
		failure.Status = &code
	}
	attrs := []logging.Attr{logging.Error(err)}
	if res.Encoder != "" {
		attrs = append(attrs, logging.String(logging.FieldEncoder, res.Encoder))
	}
	if failure.Status != nil {
		attrs = append(attrs, logging.Int("exit_code", *failure.Status))
	}
	attrs = append(attrs, logging.String(logging.FieldErrorHint, failureHint(err)))
	logging.ErrorWithContext(logger, "item failed", "item_failed", attrs...)
	return outcome, failure
}

func (d *Driver) record(ctx context.Context, outcome Outcome, failure *Failure) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordOutcome(ctx, outcome, failure); err != nil {
		logging.WarnWithContext(d.logger, "failed to record item outcome", "history_write_failed",
			logging.String(logging.FieldOrigin, outcome.Item.Origin),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "run history is incomplete"),
		)
	}
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, encoder.ErrEncoderNotFound):
		return "install the encoder or set [encoders.binaries]; run `mixtape encoders`"
	case errors.Is(err, encoder.ErrNoHandler):
		return "no configured encoder reads this format"
	case errors.Is(err, encoder.ErrEncoderNonZeroExit):
		return "inspect the encoder stderr in the run report"
	default:
		return "check file permissions and free space on the target"
	}
}
