package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
)

// Notifier receives job and step status changes while a run is in flight.
// step is -1 for job-level changes. Implementations must be safe for
// concurrent use; jobs run in parallel.
type Notifier func(jobID string, step int, status Status)

// RunOptions configures a single workflow run.
type RunOptions struct {
	Env    map[string]string // extra environment applied to every step
	Notify Notifier          // may be nil
	Jobs   []string          // job IDs to run; empty = all
}

// Result is the outcome of a workflow run.
type Result struct {
	Started time.Time
	Event   *Event
	Name    string
	Jobs    []*JobResult
	Elapsed time.Duration
}

// Failed reports whether any job failed.
func (r *Result) Failed() bool {
	for _, job := range r.Jobs {
		if job.Status == StatusFailure {
			return true
		}
	}
	return false
}

// JobResult is the outcome of one job.
// Fields are ordered to minimize memory padding.
type JobResult struct {
	Started time.Time
	ID      string
	Name    string
	Note    string // set when the job failed outside any step
	Steps   []*StepResult
	Status  Status
	Elapsed time.Duration
}

// FailedStep returns the first failed step, or nil.
func (j *JobResult) FailedStep() *StepResult {
	for _, step := range j.Steps {
		if step.Status == StatusFailure {
			return step
		}
	}
	return nil
}

// StepResult is the outcome of one step.
// Fields are ordered to minimize memory padding.
type StepResult struct {
	Name     string
	Output   string // interleaved stdout and stderr
	Status   Status
	Elapsed  time.Duration
	ExitCode int
}

// Runner executes workflow jobs as parallel local processes. Each job gets
// its own scratch directory, PR body file, and environment copy; jobs
// share nothing and a failing job never blocks another.
type Runner struct {
	log *slog.Logger
	dir string // repository checkout directory
}

// NewRunner creates a runner rooted at the checkout directory.
func NewRunner(dir string, log *slog.Logger) *Runner {
	return &Runner{dir: dir, log: log}
}

// Run validates the workflow and executes its jobs concurrently, one
// goroutine per job. The returned Result holds per-step exit codes and
// captured output; Run itself only fails on invalid input, never on step
// failures.
func (r *Runner) Run(ctx context.Context, wf *Workflow, ev *Event, opts RunOptions) (*Result, error) {
	if err := wf.Validate(); err != nil {
		return nil, err
	}
	jobs, err := wf.SelectJobs(opts.Jobs)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Name:    wf.Name,
		Event:   ev,
		Started: time.Now(),
		Jobs:    make([]*JobResult, len(jobs)),
	}

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			res.Jobs[i] = r.runJob(ctx, job, ev, opts)
		}(i, jobs[i])
	}
	wg.Wait()

	res.Elapsed = time.Since(res.Started)
	return res, nil
}

func (r *Runner) runJob(ctx context.Context, job Job, ev *Event, opts RunOptions) *JobResult {
	jr := &JobResult{
		ID:      job.ID,
		Name:    job.DisplayName(),
		Started: time.Now(),
		Status:  StatusPending,
		Steps:   make([]*StepResult, len(job.Steps)),
	}
	for i := range job.Steps {
		jr.Steps[i] = &StepResult{Name: job.Steps[i].DisplayName(), Status: StatusPending}
	}

	notify := func(step int, status Status) {
		if opts.Notify != nil {
			opts.Notify(job.ID, step, status)
		}
	}
	fail := func(note string) *JobResult {
		jr.Note = note
		jr.Status = StatusFailure
		for _, sr := range jr.Steps {
			sr.Status = StatusSkipped
		}
		jr.Elapsed = time.Since(jr.Started)
		notify(-1, StatusFailure)
		return jr
	}

	scratch, err := os.MkdirTemp("", "jukeboard-ci-"+job.ID+"-")
	if err != nil {
		return fail("create scratch dir: " + err.Error())
	}
	defer os.RemoveAll(scratch)

	env, err := r.jobEnv(scratch, ev, job, opts)
	if err != nil {
		return fail(err.Error())
	}

	jr.Status = StatusRunning
	notify(-1, StatusRunning)
	r.log.Info("job started", "job", job.ID, "steps", len(job.Steps))

	failed := false
	for i := range job.Steps {
		step := &job.Steps[i]
		sr := jr.Steps[i]
		switch {
		case failed:
			sr.Status = StatusSkipped
			notify(i, StatusSkipped)
		case step.Uses != "":
			// Provisioning actions run on the hosting platform.
			sr.Status = StatusSkipped
			sr.Output = "skipped: " + step.Uses + " runs on the hosting platform"
			notify(i, StatusSkipped)
		default:
			notify(i, StatusRunning)
			r.runStep(ctx, step, sr, env)
			notify(i, sr.Status)
			r.log.Debug("step finished",
				"job", job.ID, "step", sr.Name, "status", sr.Status, "exit", sr.ExitCode)
			if sr.Status == StatusFailure {
				failed = true
			}
		}
	}

	if failed {
		jr.Status = StatusFailure
	} else {
		jr.Status = StatusSuccess
	}
	jr.Elapsed = time.Since(jr.Started)
	notify(-1, jr.Status)
	r.log.Info("job finished", "job", job.ID, "status", jr.Status, "elapsed", jr.Elapsed)
	return jr
}

// jobEnv builds the job's isolated environment: the runner's environment
// plus the standard CI variables, the run extras, and the job's own env.
// The PR body and event payload are persisted into the job's scratch
// directory for external checkers.
func (r *Runner) jobEnv(scratch string, ev *Event, job Job, opts RunOptions) ([]string, error) {
	bodyFile := filepath.Join(scratch, "pr_body.txt")
	var body string
	if ev != nil {
		body = ev.Body
	}
	if err := os.WriteFile(bodyFile, []byte(body), 0o600); err != nil {
		return nil, fmt.Errorf("write pr body: %w", err)
	}

	env := append([]string(nil), os.Environ()...)
	set := func(k, v string) { env = append(env, k+"="+v) }
	set("CI", "true")
	set("JB_TEMP", scratch)
	set("PR_BODY_FILE", bodyFile)

	if ev != nil {
		payload, err := ev.PayloadJSON()
		if err != nil {
			return nil, fmt.Errorf("encode event payload: %w", err)
		}
		eventFile := filepath.Join(scratch, "event.json")
		if err := os.WriteFile(eventFile, payload, 0o600); err != nil {
			return nil, fmt.Errorf("write event payload: %w", err)
		}
		set("GITHUB_EVENT_PATH", eventFile)
		if ev.Type != "" {
			set("GITHUB_EVENT_NAME", ev.Type)
		}
		if repo := ev.Repository(); repo != "" {
			set("GITHUB_REPOSITORY", repo)
		}
		if ev.BaseRef != "" {
			set("GITHUB_BASE_REF", ev.BaseRef)
		}
		if ev.HeadRef != "" {
			set("GITHUB_HEAD_REF", ev.HeadRef)
		}
		if ev.HeadSHA != "" {
			set("GITHUB_SHA", ev.HeadSHA)
		}
	}
	for k, v := range opts.Env {
		set(k, v)
	}
	for k, v := range job.Env {
		set(k, v)
	}
	return env, nil
}

// runStep executes a run step with sh -c and fills in its result. The
// step's exit code propagates into the result; a step that cannot be
// spawned fails with the spawn error as its output.
func (r *Runner) runStep(ctx context.Context, step *Step, sr *StepResult, jobEnv []string) {
	start := time.Now()
	sr.Status = StatusRunning

	dir := r.dir
	if step.WorkingDir != "" {
		if filepath.IsAbs(step.WorkingDir) {
			dir = step.WorkingDir
		} else {
			dir = filepath.Join(r.dir, step.WorkingDir)
		}
	}

	env := jobEnv
	if len(step.Env) > 0 {
		env = append([]string(nil), jobEnv...)
		for k, v := range step.Env {
			env = append(env, k+"="+v)
		}
	}

	// Plain Command rather than CommandContext: cancellation must kill the
	// whole process group, not just the shell.
	// #nosec G204 - the command comes from the repository's own workflow file
	cmd := exec.Command("sh", "-c", step.Run)
	cmd.Dir = dir
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		sr.Status = StatusFailure
		sr.ExitCode = -1
		sr.Output = "start step: " + err.Error()
		sr.Elapsed = time.Since(start)
		return
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	cancelled := false
	select {
	case <-ctx.Done():
		cancelled = true
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done
	case waitErr = <-done:
	}

	sr.Elapsed = time.Since(start)
	sr.Output = out.String()
	switch {
	case cancelled:
		sr.Status = StatusFailure
		sr.ExitCode = -1
		sr.Output = appendNote(sr.Output, "run cancelled")
	case waitErr == nil:
		sr.Status = StatusSuccess
	default:
		sr.Status = StatusFailure
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			sr.ExitCode = exitErr.ExitCode()
		} else {
			sr.ExitCode = -1
			sr.Output = appendNote(sr.Output, waitErr.Error())
		}
	}
}

func appendNote(output, note string) string {
	if output == "" {
		return note
	}
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	return output + note
}
