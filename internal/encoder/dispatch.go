package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"

	"mixtape/internal/logging"
)

var (
	// ErrNoHandler means no encoder in the table reads the source extension.
	ErrNoHandler = errors.New("no encoder handles extension")
	// ErrEncoderNotFound means the selected binary could not be started.
	ErrEncoderNotFound = errors.New("encoder binary not found")
	// ErrEncoderNonZeroExit means the encoder ran and reported failure.
	ErrEncoderNonZeroExit = errors.New("encoder exited with non-zero status")
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(d *Dispatcher) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// WithLogger attaches a logger for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Job is a single conversion request.
type Job struct {
	Origin      string
	Destination string
	// Extension is the lowercase source extension used for selection.
	Extension string
}

// Result captures one encoder invocation.
type Result struct {
	Encoder string
	Binary  string
	Args    []string
	Stdout  []byte
	Stderr  []byte
	// ExitCode is -1 when the process did not exit normally or never started.
	ExitCode int
}

// Dispatcher selects and runs encoders for a profile.
type Dispatcher struct {
	table   *Table
	profile Profile
	exec    Executor
	logger  *slog.Logger
}

// NewDispatcher constructs a dispatcher bound to one profile.
func NewDispatcher(table *Table, profile Profile, opts ...Option) (*Dispatcher, error) {
	if table == nil {
		return nil, errors.New("encoder table required")
	}
	if strings.TrimSpace(profile.Extension) == "" {
		return nil, fmt.Errorf("profile %q has no extension", profile.Name)
	}
	d := &Dispatcher{
		table:   table,
		profile: profile,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Profile returns the profile the dispatcher converts to.
func (d *Dispatcher) Profile() Profile {
	return d.profile
}

// Transcode converts job.Origin into job.Destination with the first encoder
// that reads job.Extension. A failure of the chosen encoder is final.
func (d *Dispatcher) Transcode(ctx context.Context, job Job) (Result, error) {
	enc, ok := d.table.selectEncoder(job.Extension)
	if !ok {
		return Result{ExitCode: -1}, fmt.Errorf("%w %q", ErrNoHandler, job.Extension)
	}
	args := enc.Command(job.Origin, job.Destination, d.profile.ArgsFor(enc.Name))
	result := Result{
		Encoder:  enc.Name,
		Binary:   enc.Binary,
		Args:     args,
		ExitCode: -1,
	}
	d.logger.Debug("encoder invocation",
		logging.String(logging.FieldEncoder, enc.Name),
		logging.String("binary", enc.Binary),
		logging.String("args", strings.Join(args, " ")),
	)

	stdout, stderr, err := d.exec.Run(ctx, enc.Binary, args)
	result.Stdout = stdout
	result.Stderr = stderr
	if err == nil {
		result.ExitCode = 0
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, fmt.Errorf("%w: %s: %w", ErrEncoderNonZeroExit, enc.Name, err)
	case errors.Is(err, ErrEncoderNotFound):
		return result, err
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return result, fmt.Errorf("%w: %s (%s): %w", ErrEncoderNotFound, enc.Name, enc.Binary, err)
	default:
		return result, fmt.Errorf("%w: %s: %w", ErrEncoderNonZeroExit, enc.Name, err)
	}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrEncoderNotFound, binary, err)
	}
	err := cmd.Wait()
	return stdout.Bytes(), stderr.Bytes(), err
}
