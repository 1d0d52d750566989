package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hervold/jukeboard/internal/ci/pipeline"
)

// RenderSummary renders a finished run as a styled table followed by the
// captured output of every failed step. Both plain runs and the watch TUI
// use it for the final report.
func RenderSummary(res *pipeline.Result) string {
	st := DefaultStyles()
	var b strings.Builder

	nameW := 0
	for _, job := range res.Jobs {
		if w := lipgloss.Width(job.Name); w > nameW {
			nameW = w
		}
	}

	succeeded, failed := 0, 0
	for _, job := range res.Jobs {
		var glyph, detail string
		switch job.Status {
		case pipeline.StatusSuccess:
			succeeded++
			glyph = st.Success.Render("✓")
		case pipeline.StatusFailure:
			failed++
			glyph = st.Failure.Render("✗")
			if fs := job.FailedStep(); fs != nil {
				detail = st.Detail.Render(fmt.Sprintf("failed at %q (exit %d)", fs.Name, fs.ExitCode))
			} else if job.Note != "" {
				detail = st.Detail.Render(job.Note)
			}
		default:
			glyph = st.Skipped.Render("-")
		}

		name := st.Job.Render(fmt.Sprintf("%-*s", nameW, job.Name))
		status := st.statusStyle(string(job.Status)).Render(fmt.Sprintf("%-7s", string(job.Status)))
		elapsed := st.Elapsed.Render(fmt.Sprintf("%8s", formatElapsed(job.Elapsed)))
		fmt.Fprintf(&b, "%s %s  %s  %s  %s\n", glyph, name, status, elapsed, detail)
	}

	totals := fmt.Sprintf("%d job(s): %d succeeded, %d failed in %s",
		len(res.Jobs), succeeded, failed, formatElapsed(res.Elapsed))
	b.WriteString("\n")
	b.WriteString(st.Totals.Render(totals))
	b.WriteString("\n")

	for _, job := range res.Jobs {
		if job.Status != pipeline.StatusFailure {
			continue
		}
		fs := job.FailedStep()
		if fs == nil || fs.Output == "" {
			continue
		}
		head := fmt.Sprintf("── output: %s / %s (exit %d) ──", job.Name, fs.Name, fs.ExitCode)
		b.WriteString("\n")
		b.WriteString(st.OutputHead.Render(head))
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(fs.Output, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}
