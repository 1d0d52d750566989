// Package prdesc validates pull-request description format.
package prdesc

import (
	"strings"
)

// DefaultSections are the headings a PR body must contain.
var DefaultSections = []string{
	"Description of problem:",
	"Description of solution:",
	"Testing done:",
	"Closes:",
}

// Checker validates PR bodies against a set of required section headings.
type Checker struct {
	sections []string
}

// New creates a Checker. Nil or empty sections fall back to DefaultSections.
func New(sections []string) *Checker {
	if len(sections) == 0 {
		sections = DefaultSections
	}
	return &Checker{sections: append([]string(nil), sections...)}
}

// Sections returns the required headings.
func (c *Checker) Sections() []string {
	return append([]string(nil), c.sections...)
}

// Report lists the problems found in a PR body.
type Report struct {
	Missing []string // headings absent from the body
	Empty   []string // headings present but without content before the next heading
}

// OK reports whether the body passed.
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Empty) == 0
}

// Summary returns the human-readable check result.
func (r *Report) Summary() string {
	if r.OK() {
		return "PR description format check passed."
	}
	var lines []string
	if len(r.Missing) > 0 {
		lines = append(lines, "PR description is missing required sections: ["+strings.Join(r.Missing, ", ")+"]")
	}
	if len(r.Empty) > 0 {
		lines = append(lines, "PR description has empty sections: ["+strings.Join(r.Empty, ", ")+"]")
	}
	return strings.Join(lines, "\n")
}

// Check validates a PR body. A heading counts as present anywhere in the
// body; it counts as filled when any non-whitespace text sits between it
// and the next heading (or the end of the body).
func (c *Checker) Check(body string) *Report {
	report := &Report{}
	for _, section := range c.sections {
		idx := strings.Index(body, section)
		if idx < 0 {
			report.Missing = append(report.Missing, section)
			continue
		}
		content := body[idx+len(section):]
		if next := c.nextHeading(content); next >= 0 {
			content = content[:next]
		}
		if strings.TrimSpace(content) == "" {
			report.Empty = append(report.Empty, section)
		}
	}
	return report
}

// nextHeading returns the offset of the closest following heading in s,
// or -1 when no heading follows.
func (c *Checker) nextHeading(s string) int {
	next := -1
	for _, section := range c.sections {
		if idx := strings.Index(s, section); idx >= 0 && (next < 0 || idx < next) {
			next = idx
		}
	}
	return next
}

// Template returns a skeleton body containing every required section.
func (c *Checker) Template() string {
	var b strings.Builder
	for _, section := range c.sections {
		b.WriteString(section)
		b.WriteString("\n\n")
	}
	return b.String()
}
