package convert_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mixtape/internal/convert"
	"mixtape/internal/encoder"
	"mixtape/internal/fileutil"
	"mixtape/internal/plan"
)

type fakeTranscoder struct {
	fail  map[string]bool
	calls []encoder.Job
}

func (f *fakeTranscoder) Transcode(ctx context.Context, job encoder.Job) (encoder.Result, error) {
	f.calls = append(f.calls, job)
	res := encoder.Result{Encoder: "sox", ExitCode: -1}
	if f.fail[job.Origin] {
		res.ExitCode = 2
		res.Stderr = []byte("sox FAIL formats: can't open input file")
		return res, fmt.Errorf("%w: sox", encoder.ErrEncoderNonZeroExit)
	}
	if !strings.HasPrefix(filepath.Base(job.Destination), fileutil.PartialPrefix) {
		return res, fmt.Errorf("expected partial destination, got %s", job.Destination)
	}
	if err := os.WriteFile(job.Destination, []byte("encoded:"+job.Origin), 0o644); err != nil {
		return res, err
	}
	res.ExitCode = 0
	return res, nil
}

type memoryRecorder struct {
	outcomes []convert.Outcome
	failures int
}

func (m *memoryRecorder) RecordOutcome(ctx context.Context, outcome convert.Outcome, failure *convert.Failure) error {
	m.outcomes = append(m.outcomes, outcome)
	if failure != nil {
		m.failures++
	}
	return nil
}

type fixture struct {
	source string
	target string
}

func newFixture(t *testing.T, files ...string) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{source: filepath.Join(root, "music"), target: filepath.Join(root, "stick")}
	for _, name := range files {
		path := filepath.Join(f.source, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("audio:"+name), 0o644); err != nil {
			t.Fatalf("write source: %v", err)
		}
	}
	if err := os.MkdirAll(f.target, 0o755); err != nil {
		t.Fatalf("mkdir target: %v", err)
	}
	return f
}

func (f fixture) item(rel, out string, action plan.Action, ext string) plan.PlannedItem {
	dest := filepath.Join(f.target, out)
	return plan.PlannedItem{
		Origin:          filepath.Join(f.source, rel),
		Playlist:        "Drive",
		DestinationDir:  filepath.Dir(dest),
		DestinationPath: dest,
		Extension:       ext,
		Action:          action,
	}
}

func TestExecuteCopiesAndConverts(t *testing.T) {
	f := newFixture(t, "A/one.flac", "B/two.mp3")
	items := []plan.PlannedItem{
		f.item("A/one.flac", "A/one.mp3", plan.ActionTranscode, "flac"),
		f.item("B/two.mp3", "B/two.mp3", plan.ActionCopy, "mp3"),
	}
	tc := &fakeTranscoder{}
	rec := &memoryRecorder{}
	driver, err := convert.NewDriver(tc, convert.WithRecorder(rec))
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}

	report, err := driver.Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Converted != 1 || report.Copied != 1 || report.Failed != 0 || report.Skipped != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	data, err := os.ReadFile(items[0].DestinationPath)
	if err != nil || !strings.HasPrefix(string(data), "encoded:") {
		t.Fatalf("expected converted output, got %q, %v", data, err)
	}
	data, err = os.ReadFile(items[1].DestinationPath)
	if err != nil || string(data) != "audio:B/two.mp3" {
		t.Fatalf("expected copied output, got %q, %v", data, err)
	}
	if fileutil.Exists(fileutil.PartialPath(items[0].DestinationPath)) {
		t.Fatal("partial file left behind")
	}
	if len(rec.outcomes) != 2 {
		t.Fatalf("expected 2 recorded outcomes, got %d", len(rec.outcomes))
	}
}

func TestExecuteIsIdempotent(t *testing.T) {
	f := newFixture(t, "one.flac", "two.mp3")
	items := []plan.PlannedItem{
		f.item("one.flac", "one.mp3", plan.ActionTranscode, "flac"),
		f.item("two.mp3", "two.mp3", plan.ActionCopy, "mp3"),
	}
	tc := &fakeTranscoder{}
	driver, err := convert.NewDriver(tc)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	if _, err := driver.Execute(context.Background(), items); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	report, err := driver.Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if report.Skipped != 2 || report.Total() != 2 {
		t.Fatalf("second run should skip everything, got %+v", report)
	}
	if len(tc.calls) != 1 {
		t.Fatalf("encoder should only run once, ran %d times", len(tc.calls))
	}
}

func TestExecuteSkipsPrepopulatedDestinationOnly(t *testing.T) {
	f := newFixture(t, "one.flac", "two.flac")
	items := []plan.PlannedItem{
		f.item("one.flac", "one.mp3", plan.ActionTranscode, "flac"),
		f.item("two.flac", "two.mp3", plan.ActionTranscode, "flac"),
	}
	if err := os.WriteFile(items[0].DestinationPath, []byte("already here"), 0o644); err != nil {
		t.Fatalf("prepopulate: %v", err)
	}
	driver, err := convert.NewDriver(&fakeTranscoder{})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	report, err := driver.Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Skipped != 1 || report.Converted != 1 || len(report.Failures) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	data, _ := os.ReadFile(items[0].DestinationPath)
	if string(data) != "already here" {
		t.Fatalf("existing destination was overwritten: %q", data)
	}
}

func TestExecuteSkipsMissingOriginAndCollision(t *testing.T) {
	f := newFixture(t, "a/x.flac")
	first := f.item("a/x.flac", "x.mp3", plan.ActionTranscode, "flac")
	collision := f.item("b/x.flac", "x.mp3", plan.ActionTranscode, "flac")
	collision.CollidesWith = first.Origin
	missing := f.item("gone.flac", "gone.mp3", plan.ActionTranscode, "flac")

	tc := &fakeTranscoder{}
	driver, err := convert.NewDriver(tc)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	report, err := driver.Execute(context.Background(), []plan.PlannedItem{first, collision, missing})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Converted != 1 || report.Skipped != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	want := []convert.Status{convert.StatusConverted, convert.StatusSkippedCollision, convert.StatusSkippedMissing}
	for i, outcome := range report.Outcomes {
		if outcome.Status != want[i] {
			t.Fatalf("outcome %d: got %s, want %s", i, outcome.Status, want[i])
		}
	}
	if fileutil.Exists(filepath.Join(f.target, "gone.mp3")) {
		t.Fatal("missing origin must not produce output")
	}
}

func TestExecuteContinuesAfterFailure(t *testing.T) {
	f := newFixture(t, "bad.flac", "good.flac")
	items := []plan.PlannedItem{
		f.item("bad.flac", "bad.mp3", plan.ActionTranscode, "flac"),
		f.item("good.flac", "good.mp3", plan.ActionTranscode, "flac"),
	}
	tc := &fakeTranscoder{fail: map[string]bool{items[0].Origin: true}}
	rec := &memoryRecorder{}
	driver, err := convert.NewDriver(tc, convert.WithRecorder(rec))
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	report, err := driver.Execute(context.Background(), items)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Failed != 1 || report.Converted != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	failure := report.Failures[0]
	if failure.Origin != items[0].Origin || failure.Destination != items[0].DestinationPath {
		t.Fatalf("unexpected failure paths %+v", failure)
	}
	if failure.Status == nil || *failure.Status != 2 {
		t.Fatalf("expected exit status 2, got %v", failure.Status)
	}
	if !strings.Contains(string(failure.Stderr), "can't open input file") {
		t.Fatalf("stderr not captured: %q", failure.Stderr)
	}
	if !errors.Is(failure.Err, encoder.ErrEncoderNonZeroExit) {
		t.Fatalf("unexpected failure error %v", failure.Err)
	}
	if fileutil.Exists(items[0].DestinationPath) {
		t.Fatal("failed item must not leave a destination file")
	}
	if rec.failures != 1 {
		t.Fatalf("expected recorder to see one failure, got %d", rec.failures)
	}
}

func TestExecuteStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t, "one.flac")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	driver, err := convert.NewDriver(&fakeTranscoder{})
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	report, err := driver.Execute(ctx, []plan.PlannedItem{f.item("one.flac", "one.mp3", plan.ActionTranscode, "flac")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Total() != 0 {
		t.Fatalf("no items should run after cancellation, got %+v", report)
	}
}
