package convert

import (
	"time"

	"mixtape/internal/plan"
)

// Status is the outcome of one item.
type Status string

const (
	StatusCopied           Status = "copied"
	StatusConverted        Status = "converted"
	StatusSkippedExists    Status = "skipped_exists"
	StatusSkippedMissing   Status = "skipped_missing"
	StatusSkippedCollision Status = "skipped_collision"
	StatusFailed           Status = "failed"
)

// Skipped reports whether the status is one of the skip outcomes.
func (s Status) Skipped() bool {
	switch s {
	case StatusSkippedExists, StatusSkippedMissing, StatusSkippedCollision:
		return true
	}
	return false
}

// Outcome records what happened to a single item.
type Outcome struct {
	Item     plan.PlannedItem
	Status   Status
	Encoder  string
	Duration time.Duration
	Err      error
}

// Failure describes an item that could not be produced.
type Failure struct {
	Origin      string
	Destination string
	Encoder     string
	Stdout      []byte
	Stderr      []byte
	// Status is the encoder exit code, nil when no process exit was observed.
	Status *int
	Err    error
}

// Report aggregates a run.
type Report struct {
	Copied    int
	Converted int
	Skipped   int
	Failed    int
	Failures  []Failure
	Outcomes  []Outcome
}

// Total returns the number of items processed.
func (r Report) Total() int {
	return r.Copied + r.Converted + r.Skipped + r.Failed
}

func (r *Report) add(outcome Outcome) {
	switch {
	case outcome.Status == StatusCopied:
		r.Copied++
	case outcome.Status == StatusConverted:
		r.Converted++
	case outcome.Status.Skipped():
		r.Skipped++
	default:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, outcome)
}
