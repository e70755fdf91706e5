package preflight

import (
	"fmt"
	"strings"

	"mixtape/internal/config"
	"mixtape/internal/deps"
	"mixtape/internal/encoder"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a run needs: the target must be a writable
// directory and, when history is enabled, so must the state directory.
// Encoder availability is not a blocking check because a plan may be
// copy-only.
func RunAll(cfg *config.Config, target string) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{CheckDirectoryAccess("Target directory", target)}
	if cfg.History.Enabled {
		if err := cfg.EnsureDirectories(); err != nil {
			results = append(results, Result{Name: "State directory", Detail: err.Error()})
		} else {
			results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
		}
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckEncoders reports availability for every encoder in the table, in
// preference order.
func CheckEncoders(table *encoder.Table) []EncoderStatus {
	encoders := table.Encoders()
	reqs := make([]deps.Requirement, 0, len(encoders))
	for _, enc := range encoders {
		reqs = append(reqs, deps.Requirement{
			Name:        enc.Name,
			Command:     enc.Binary,
			Description: fmt.Sprintf("Reads %s", strings.Join(enc.Extensions, ", ")),
			Optional:    true,
		})
	}
	statuses := make([]EncoderStatus, 0, len(encoders))
	for i, status := range deps.CheckBinaries(reqs) {
		statuses = append(statuses, EncoderStatus{Encoder: encoders[i], Status: status})
	}
	return statuses
}
