package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"mixtape/internal/convert"
)

// maxStoredStderr caps how much encoder stderr is kept per item.
const maxStoredStderr = 4096

// ItemRecord is one stored item outcome.
type ItemRecord struct {
	Seq         int
	Origin      string
	Destination string
	Playlist    string
	Action      string
	Status      convert.Status
	Encoder     string
	ExitCode    *int
	Error       string
	Stderr      string
	Duration    time.Duration
	RecordedAt  time.Time
}

// RunRecorder appends outcomes of one run. It satisfies convert.Recorder.
type RunRecorder struct {
	store *Store
	runID string

	mu  sync.Mutex
	seq int
}

// Recorder returns a recorder bound to runID.
func (s *Store) Recorder(runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// RecordOutcome stores one item outcome.
func (r *RunRecorder) RecordOutcome(ctx context.Context, outcome convert.Outcome, failure *convert.Failure) error {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	var (
		exitCode any
		errMsg   string
		stderr   string
	)
	if outcome.Err != nil {
		errMsg = outcome.Err.Error()
	}
	if failure != nil {
		if failure.Status != nil {
			exitCode = *failure.Status
		}
		stderr = string(failure.Stderr)
		if len(stderr) > maxStoredStderr {
			stderr = stderr[len(stderr)-maxStoredStderr:]
		}
	}
	item := outcome.Item
	_, err := r.store.exec(ctx,
		`INSERT INTO run_items (
            run_id, seq, origin, destination, playlist, action, status, encoder,
            exit_code, error_message, stderr, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.runID,
		seq,
		item.Origin,
		item.DestinationPath,
		nullableString(item.Playlist),
		item.Action.String(),
		string(outcome.Status),
		nullableString(outcome.Encoder),
		exitCode,
		nullableString(errMsg),
		nullableString(stderr),
		outcome.Duration.Milliseconds(),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert run item: %w", err)
	}
	return nil
}

// RunItems returns the stored outcomes of a run in execution order.
func (s *Store) RunItems(ctx context.Context, runID string) ([]ItemRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, origin, destination, playlist, action, status, encoder,
                exit_code, error_message, stderr, duration_ms, recorded_at
         FROM run_items WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run items: %w", err)
	}
	defer rows.Close()

	var items []ItemRecord
	for rows.Next() {
		var (
			rec        ItemRecord
			playlist   sql.NullString
			status     string
			encoder    sql.NullString
			exitCode   sql.NullInt64
			errMsg     sql.NullString
			stderr     sql.NullString
			durationMS int64
			recordedAt string
		)
		if err := rows.Scan(
			&rec.Seq,
			&rec.Origin,
			&rec.Destination,
			&playlist,
			&rec.Action,
			&status,
			&encoder,
			&exitCode,
			&errMsg,
			&stderr,
			&durationMS,
			&recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		rec.Playlist = playlist.String
		rec.Status = convert.Status(status)
		rec.Encoder = encoder.String
		if exitCode.Valid {
			code := int(exitCode.Int64)
			rec.ExitCode = &code
		}
		rec.Error = errMsg.String
		rec.Stderr = stderr.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.RecordedAt = parseTime(recordedAt)
		items = append(items, rec)
	}
	return items, rows.Err()
}
