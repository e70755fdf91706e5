package main

import (
	"fmt"
	"strings"

	"mixtape/internal/convert"
	"mixtape/internal/history"
)

// maxReportedOutput limits how much encoder output is echoed per failure.
const maxReportedOutput = 2000

func renderSummary(p *preparedRun, report convert.Report, run *history.Run, colorize bool) string {
	var b strings.Builder
	for _, line := range renderSectionHeader("Run summary", colorize) {
		b.WriteString(line + "\n")
	}
	if run != nil {
		b.WriteString(renderStatusLine("Run", statusInfo, run.ID, colorize) + "\n")
	}
	b.WriteString(renderStatusLine("Target", statusInfo, p.target, colorize) + "\n")
	b.WriteString(renderStatusLine("Profile", statusInfo, p.profile.Name, colorize) + "\n")
	b.WriteString(countLine("Copied", report.Copied, statusOK, colorize) + "\n")
	b.WriteString(countLine("Converted", report.Converted, statusOK, colorize) + "\n")
	b.WriteString(countLine("Skipped", report.Skipped, statusInfo, colorize) + "\n")
	b.WriteString(countLine("Failed", report.Failed, failureKind(report.Failed), colorize) + "\n")
	if planned := len(p.result.Items); report.Total() < planned {
		b.WriteString(renderStatusLine("Not processed", statusWarn, fmt.Sprintf("%d of %d", planned-report.Total(), planned), colorize) + "\n")
	}
	return b.String()
}

func renderFailures(failures []convert.Failure, colorize bool) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, line := range renderSectionHeader(fmt.Sprintf("Failures (%d)", len(failures)), colorize) {
		b.WriteString(line + "\n")
	}
	for i, f := range failures {
		fmt.Fprintf(&b, "%d. %s\n", i+1, displayName(f.Origin))
		fmt.Fprintf(&b, "   -> %s\n", displayName(f.Destination))
		status := "none"
		if f.Status != nil {
			status = fmt.Sprintf("%d", *f.Status)
		}
		if f.Encoder != "" {
			fmt.Fprintf(&b, "   encoder: %s, status: %s\n", f.Encoder, status)
		} else {
			fmt.Fprintf(&b, "   status: %s\n", status)
		}
		if f.Err != nil {
			fmt.Fprintf(&b, "   error: %v\n", f.Err)
		}
		writeOutput(&b, "stdout", f.Stdout)
		writeOutput(&b, "stderr", f.Stderr)
	}
	return b.String()
}

func writeOutput(b *strings.Builder, label string, data []byte) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return
	}
	if len(text) > maxReportedOutput {
		text = "..." + text[len(text)-maxReportedOutput:]
	}
	fmt.Fprintf(b, "   %s:\n", label)
	for _, line := range strings.Split(text, "\n") {
		b.WriteString("     " + strings.TrimRight(line, "\r") + "\n")
	}
}
