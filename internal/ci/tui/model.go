// Package tui implements the live watch view for workflow runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hervold/jukeboard/internal/ci/pipeline"
)

// RunFunc starts a workflow run and blocks until it settles. The notifier
// receives every job and step transition.
type RunFunc func(ctx context.Context, notify pipeline.Notifier) (*pipeline.Result, error)

// jobView is the live display state of one job.
type jobView struct {
	started time.Time
	id      string
	name    string
	steps   []string
	status  pipeline.Status
	elapsed time.Duration
	step    int // index of the running step, -1 when none
}

// Model is the watch TUI model.
// Fields are ordered to minimize memory padding.
type Model struct {
	// Dependencies
	run     RunFunc
	ctx     context.Context
	cancel  context.CancelFunc
	updates chan MsgJobStatus

	// State
	name   string
	jobs   []jobView
	index  map[string]int
	result *pipeline.Result
	err    error

	// Components
	keys    KeyMap
	styles  Styles
	spinner spinner.Model

	// Numeric state
	width int

	// Boolean state
	done     bool
	quitting bool
}

// New creates a watch model for the given jobs. The run starts when the
// program does.
func New(ctx context.Context, name string, jobs []pipeline.Job, run RunFunc) *Model {
	runCtx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	m := &Model{
		run:     run,
		ctx:     runCtx,
		cancel:  cancel,
		updates: make(chan MsgJobStatus, 64),
		name:    name,
		index:   make(map[string]int, len(jobs)),
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		spinner: sp,
	}
	for _, job := range jobs {
		steps := make([]string, len(job.Steps))
		for i := range job.Steps {
			steps[i] = job.Steps[i].DisplayName()
		}
		m.index[job.ID] = len(m.jobs)
		m.jobs = append(m.jobs, jobView{
			id:     job.ID,
			name:   job.DisplayName(),
			steps:  steps,
			status: pipeline.StatusPending,
			step:   -1,
		})
	}
	return m
}

// Result returns the run outcome once the program has finished.
func (m *Model) Result() (*pipeline.Result, error) {
	return m.result, m.err
}

// Init starts the run and the status pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), m.nextUpdate())
}

// startRun launches the workflow run and reports its result.
func (m *Model) startRun() tea.Cmd {
	return func() tea.Msg {
		notify := func(jobID string, step int, status pipeline.Status) {
			select {
			case m.updates <- MsgJobStatus{JobID: jobID, Step: step, Status: status}:
			default:
				// The final result repaints everything; drops are harmless.
			}
		}
		res, err := m.run(m.ctx, notify)
		close(m.updates)
		return MsgRunFinished{Result: res, Err: err}
	}
}

// nextUpdate delivers one queued status change.
func (m *Model) nextUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			// The cancelled run still settles and delivers MsgRunFinished.
			m.quitting = true
			m.cancel()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case MsgJobStatus:
		m.apply(msg)
		if m.done {
			return m, nil
		}
		return m, m.nextUpdate()

	case MsgRunFinished:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// apply folds a status change into the job views.
func (m *Model) apply(msg MsgJobStatus) {
	i, ok := m.index[msg.JobID]
	if !ok {
		return
	}
	job := &m.jobs[i]

	if msg.Step >= 0 {
		if msg.Status == pipeline.StatusRunning {
			job.step = msg.Step
		} else if job.step == msg.Step {
			job.step = -1
		}
		return
	}

	job.status = msg.Status
	switch msg.Status {
	case pipeline.StatusRunning:
		job.started = time.Now()
	default:
		if !job.started.IsZero() {
			job.elapsed = time.Since(job.started)
		}
		job.step = -1
	}
}

// View renders the live job table, or the final summary once the run has
// settled.
func (m *Model) View() string {
	var b strings.Builder
	title := m.name
	if title == "" {
		title = "CI"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")

	if m.done {
		if m.err != nil {
			b.WriteString(m.styles.Failure.Render("run failed: " + m.err.Error()))
			b.WriteString("\n")
			return b.String()
		}
		if m.result != nil {
			b.WriteString(RenderSummary(m.result))
		}
		return b.String()
	}

	nameW := 0
	for i := range m.jobs {
		if w := lipgloss.Width(m.jobs[i].name); w > nameW {
			nameW = w
		}
	}
	for i := range m.jobs {
		b.WriteString(m.viewJob(&m.jobs[i], nameW))
		b.WriteString("\n")
	}

	help := "q: cancel"
	if m.quitting {
		help = "cancelling..."
	}
	b.WriteString(m.styles.Help.Render(help))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewJob(job *jobView, nameW int) string {
	name := m.styles.Job.Render(fmt.Sprintf("%-*s", nameW, job.name))
	status := m.styles.statusStyle(string(job.status)).Render(fmt.Sprintf("%-7s", string(job.status)))

	var glyph, detail string
	switch job.status {
	case pipeline.StatusRunning:
		glyph = m.spinner.View()
		detail = m.styles.Elapsed.Render(formatElapsed(time.Since(job.started)))
		if job.step >= 0 && job.step < len(job.steps) {
			step := fmt.Sprintf("  %s (%d/%d)", job.steps[job.step], job.step+1, len(job.steps))
			detail += m.styles.Detail.Render(step)
		}
	case pipeline.StatusSuccess:
		glyph = m.styles.Success.Render("✓")
		detail = m.styles.Elapsed.Render(formatElapsed(job.elapsed))
	case pipeline.StatusFailure:
		glyph = m.styles.Failure.Render("✗")
		detail = m.styles.Elapsed.Render(formatElapsed(job.elapsed))
	default:
		glyph = m.styles.Pending.Render("•")
	}

	return fmt.Sprintf("%s %s  %s  %s", glyph, name, status, detail)
}

func formatElapsed(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}
