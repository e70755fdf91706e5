package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mixtape/internal/convert"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunCompleted   RunStatus = "completed"
	RunInterrupted RunStatus = "interrupted"
)

var (
	// ErrRunNotFound is returned when no run matches an identifier.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned when an id prefix matches several runs.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// RunInfo describes a run at start time.
type RunInfo struct {
	Target    string
	Profile   string
	Layout    string
	Playlists []string
	Planned   int
}

// Run is a stored run row.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus
	RunInfo
	Copied    int
	Converted int
	Skipped   int
	Failed    int
}

// ShortID returns the first block of the run UUID.
func (r Run) ShortID() string {
	if idx := strings.IndexByte(r.ID, '-'); idx > 0 {
		return r.ID[:idx]
	}
	return r.ID
}

const runColumns = `id, started_at, finished_at, status, target, profile, layout, playlists_json,
    planned, copied, converted, skipped, failed`

// StartRun inserts a new running run and returns it.
func (s *Store) StartRun(ctx context.Context, info RunInfo) (*Run, error) {
	playlists := info.Playlists
	if playlists == nil {
		playlists = []string{}
	}
	playlistsJSON, err := json.Marshal(playlists)
	if err != nil {
		return nil, fmt.Errorf("marshal playlists: %w", err)
	}
	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Status:    RunRunning,
		RunInfo:   info,
	}
	_, err = s.exec(ctx,
		`INSERT INTO runs (id, started_at, status, target, profile, layout, playlists_json, planned)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		run.Status,
		info.Target,
		info.Profile,
		info.Layout,
		string(playlistsJSON),
		info.Planned,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(ctx context.Context, id string, status RunStatus, report convert.Report) error {
	res, err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, copied = ?, converted = ?, skipped = ?, failed = ?
         WHERE id = ?`,
		formatTime(time.Now()),
		status,
		report.Copied,
		report.Converted,
		report.Skipped,
		report.Failed,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun resolves a full run id or a unique prefix of one.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	idOrPrefix = strings.ToLower(strings.TrimSpace(idOrPrefix))
	if idOrPrefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(idOrPrefix)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY started_at LIMIT 2`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run           Run
		startedAt     string
		finishedAt    sql.NullString
		status        string
		playlistsJSON string
	)
	if err := scanner.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&status,
		&run.Target,
		&run.Profile,
		&run.Layout,
		&playlistsJSON,
		&run.Planned,
		&run.Copied,
		&run.Converted,
		&run.Skipped,
		&run.Failed,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(startedAt)
	run.Status = RunStatus(status)
	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(playlistsJSON), &run.Playlists); err != nil {
		return nil, fmt.Errorf("decode playlists for run %s: %w", run.ID, err)
	}
	return &run, nil
}
