package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"mixtape/internal/convert"
	"mixtape/internal/deps"
	"mixtape/internal/encoder"
	"mixtape/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Converted", statusOK, "12", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Converted:", "[OK] 12")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Failed", statusError, "3", true)
	if !strings.HasPrefix(got, ansiRed) {
		t.Fatalf("expected red prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestCountLineMarksFailures(t *testing.T) {
	if got := countLine("Failed", 0, failureKind(0), false); !strings.HasSuffix(got, "[OK] 0") {
		t.Fatalf("zero failures should be OK, got %q", got)
	}
	if got := countLine("Failed", 2, failureKind(2), false); !strings.HasSuffix(got, "[ERROR] 2") {
		t.Fatalf("failures should be ERROR, got %q", got)
	}
}

func TestRenderSectionHeaderRuleMatchesTitle(t *testing.T) {
	lines := renderSectionHeader(" Run summary ", false)
	if lines[0] != "== Run summary ==" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines[1]) != len(lines[0]) || strings.Trim(lines[1], "-") != "" {
		t.Fatalf("rule should underline the header, got %q", lines[1])
	}
}

func TestEncoderLines(t *testing.T) {
	statuses := []preflight.EncoderStatus{
		{Encoder: encoder.Encoder{Name: "sox"}, Status: deps.Status{Available: true, Path: "/usr/bin/sox"}},
		{Encoder: encoder.Encoder{Name: "avconv"}, Status: deps.Status{Detail: "binary \"avconv\" not found"}},
		{Encoder: encoder.Encoder{Name: "ffmpeg"}, Status: deps.Status{Available: true, Path: "/usr/bin/ffmpeg"}},
	}
	lines := encoderLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] Ready (command: /usr/bin/sox)") {
		t.Fatalf("expected ready line first, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[WARN]") || !strings.Contains(lines[1], "not found") {
		t.Fatalf("expected warn detail in second line, got %q", lines[1])
	}
	if !strings.Contains(lines[3], "missing avconv") {
		t.Fatalf("expected missing summary, got %q", lines[3])
	}
}

func TestEncoderLinesNoneAvailable(t *testing.T) {
	statuses := []preflight.EncoderStatus{
		{Encoder: encoder.Encoder{Name: "sox"}, Status: deps.Status{Detail: "not found"}},
	}
	lines := encoderLines(statuses, false)
	if !strings.Contains(lines[len(lines)-1], "[ERROR] no encoder available") {
		t.Fatalf("expected error summary, got %q", lines[len(lines)-1])
	}
}

func TestRenderFailuresIncludesEncoderOutput(t *testing.T) {
	code := 2
	out := renderFailures([]convert.Failure{{
		Origin:      "/music/a.flac",
		Destination: "/stick/a.mp3",
		Encoder:     "sox",
		Stderr:      []byte("sox FAIL formats: can't open input\n"),
		Status:      &code,
		Err:         errors.New("encoder exited with status 2"),
	}}, false)
	for _, want := range []string{"Failures (1)", "1. /music/a.flac", "-> /stick/a.mp3", "encoder: sox, status: 2", "stderr:", "can't open input"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in failure report:\n%s", want, out)
		}
	}
	if strings.Contains(out, "stdout:") {
		t.Fatalf("empty stdout should be omitted:\n%s", out)
	}
}

func TestWriteOutputTruncatesFromFront(t *testing.T) {
	var b strings.Builder
	writeOutput(&b, "stderr", []byte(strings.Repeat("x", maxReportedOutput)+"tail"))
	got := b.String()
	if !strings.Contains(got, "...") || !strings.HasSuffix(strings.TrimSpace(got), "tail") {
		t.Fatalf("expected truncated output ending in tail, got %q", got[len(got)-20:])
	}
}

func TestRenderTableWrapsPathColumns(t *testing.T) {
	long := "/" + strings.Repeat("a", pathColumnWidth+20) + ".flac"
	out := renderTable([]string{"#", "Origin"}, [][]string{{"1", long}}, []columnAlignment{alignRight, alignLeft})
	if strings.Contains(out, long) {
		t.Fatalf("expected long origin to wrap:\n%s", out)
	}
}

func TestDisplayNameReplacesInvalidBytes(t *testing.T) {
	if got := displayName("/music/caf\xe9.mp3"); got != "/music/caf�.mp3" {
		t.Fatalf("displayName = %q", got)
	}
	if got := displayName("/music/café.mp3"); got != "/music/café.mp3" {
		t.Fatalf("valid UTF-8 should be unchanged, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestShouldColorizeHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(os.Stdout) {
		t.Fatalf("expected NO_COLOR to disable color")
	}
}
