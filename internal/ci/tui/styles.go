package tui

import "github.com/charmbracelet/lipgloss"

// Colors used in the watch TUI.
var (
	ColorPrimary = lipgloss.Color("#7C3AED") // Purple
	ColorSuccess = lipgloss.Color("#10B981") // Green
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorWarning = lipgloss.Color("#F59E0B") // Amber
	ColorMuted   = lipgloss.Color("#9CA3AF") // Light gray
)

// Styles holds the styles for the watch TUI and the run summary.
type Styles struct {
	Title      lipgloss.Style
	Job        lipgloss.Style
	Success    lipgloss.Style
	Failure    lipgloss.Style
	Skipped    lipgloss.Style
	Running    lipgloss.Style
	Pending    lipgloss.Style
	Elapsed    lipgloss.Style
	Detail     lipgloss.Style
	Totals     lipgloss.Style
	OutputHead lipgloss.Style
	Help       lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),
		Job: lipgloss.NewStyle().
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess),
		Failure: lipgloss.NewStyle().
			Foreground(ColorError),
		Skipped: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Running: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Pending: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Elapsed: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Detail: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Totals: lipgloss.NewStyle().
			Bold(true),
		OutputHead: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError),
		Help: lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1),
	}
}

// statusStyle returns the style for a job or step status.
func (s Styles) statusStyle(status string) lipgloss.Style {
	switch status {
	case "success":
		return s.Success
	case "failure":
		return s.Failure
	case "skipped":
		return s.Skipped
	case "running":
		return s.Running
	default:
		return s.Pending
	}
}
