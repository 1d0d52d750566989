// Package pipeline implements the workflow model and job runner for
// jukeboard-ci. A workflow file is a compatible subset of the GitHub
// Actions schema: pull_request triggers with base-branch filters, and jobs
// made of run/uses steps. Jobs are independent and run in parallel; steps
// within a job run in order.
package pipeline

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBranches are the protected base branches applied when a workflow
// does not name any.
var DefaultBranches = []string{"master", "main"}

// defaultTypes are the pull_request actions that trigger a run when the
// workflow does not list any, matching hosted CI defaults.
var defaultTypes = []string{"opened", "synchronize", "reopened"}

// Workflow is a parsed workflow file. Jobs preserve file order.
// Fields are ordered to minimize memory padding.
type Workflow struct {
	Name     string
	Trigger  Trigger
	Jobs     []Job
	Warnings []string // unknown or unsupported keys found while parsing

	problems []string // structural problems, reported by Validate
}

// Trigger filters the pull-request events that start a run.
type Trigger struct {
	Branches []string // base branches; exact names or */** globs
	Types    []string // pull_request actions; empty = defaults
}

// Job is an independent unit of work made of sequential steps.
type Job struct {
	ID    string
	Name  string
	Env   map[string]string
	Steps []Step
}

// DisplayName returns the job's name, falling back to its ID.
func (j *Job) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	return j.ID
}

// Step is a single command or provisioning action inside a job.
type Step struct {
	Name       string
	Run        string // shell command, executed with sh -c
	Uses       string // provisioning action, recorded as skipped by the local runner
	WorkingDir string
	Env        map[string]string
}

// DisplayName returns the step's name, falling back to its command or action.
func (s *Step) DisplayName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Run != "":
		return s.Run
	default:
		return s.Uses
	}
}

// ValidationError reports every structural problem found in a workflow.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid workflow: " + strings.Join(e.Problems, "; ")
}

// Load reads and parses a workflow file.
func Load(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	wf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse workflow %s: %w", path, err)
	}
	return wf, nil
}

// Parse parses workflow YAML. Unknown keys are collected as warnings, not
// errors; structural problems are reported by Validate.
func Parse(data []byte) (*Workflow, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse workflow yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty workflow document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("workflow root must be a mapping")
	}

	wf := &Workflow{}
	if err := eachKey(root, func(key string, val *yaml.Node) error {
		switch key {
		// Node keys keep their raw text, so YAML 1.1 boolean resolution
		// of a bare `on` does not bite here.
		case "on":
			return wf.parseTrigger(val)
		case "name":
			return val.Decode(&wf.Name)
		case "jobs":
			return wf.parseJobs(val)
		default:
			wf.warnf("unknown key %q ignored", key)
			return nil
		}
	}); err != nil {
		return nil, err
	}

	if len(wf.Trigger.Branches) == 0 {
		wf.Trigger.Branches = append([]string(nil), DefaultBranches...)
	}
	return wf, nil
}

// Validate checks the workflow structure. It returns a *ValidationError
// listing every problem, or nil.
func (w *Workflow) Validate() error {
	problems := append([]string(nil), w.problems...)
	if len(w.Jobs) == 0 {
		problems = append(problems, "workflow has no jobs")
	}
	for _, job := range w.Jobs {
		if job.ID == "" {
			problems = append(problems, "job with empty id")
			continue
		}
		if len(job.Steps) == 0 {
			problems = append(problems, fmt.Sprintf("job %q has no steps", job.ID))
		}
		for i, step := range job.Steps {
			switch {
			case step.Run != "" && step.Uses != "":
				problems = append(problems, fmt.Sprintf("job %q step %d sets both run and uses", job.ID, i+1))
			case step.Run == "" && step.Uses == "":
				problems = append(problems, fmt.Sprintf("job %q step %d has neither run nor uses", job.ID, i+1))
			}
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Job returns the job with the given ID.
func (w *Workflow) Job(id string) (*Job, bool) {
	for i := range w.Jobs {
		if w.Jobs[i].ID == id {
			return &w.Jobs[i], true
		}
	}
	return nil, false
}

// SelectJobs returns the jobs matching ids in workflow order, or all jobs
// when ids is empty. Unknown IDs are an error.
func (w *Workflow) SelectJobs(ids []string) ([]Job, error) {
	if len(ids) == 0 {
		return w.Jobs, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := w.Job(id); !ok {
			return nil, fmt.Errorf("unknown job %q", id)
		}
		want[id] = true
	}
	var jobs []Job
	for _, job := range w.Jobs {
		if want[job.ID] {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// Matches reports whether the event triggers this workflow.
func (w *Workflow) Matches(ev *Event) bool {
	if ev == nil || ev.Type != EventPullRequest {
		return false
	}
	return w.Trigger.MatchesAction(ev.Action) && w.Trigger.MatchesBranch(ev.BaseRef)
}

// MatchesAction reports whether a pull_request action is in the trigger's
// type filter.
func (t *Trigger) MatchesAction(action string) bool {
	types := t.Types
	if len(types) == 0 {
		types = defaultTypes
	}
	for _, a := range types {
		if a == action {
			return true
		}
	}
	return false
}

// MatchesBranch reports whether a base branch matches the trigger's
// branch filter.
func (t *Trigger) MatchesBranch(branch string) bool {
	for _, pattern := range t.Branches {
		if matchBranch(pattern, branch) {
			return true
		}
	}
	return false
}

// matchBranch matches a branch against a filter pattern. `*` matches any
// run of characters except `/`, `**` matches across slashes.
func matchBranch(pattern, branch string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return pattern == branch
	}
	var re strings.Builder
	re.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				re.WriteString(".*")
				i++
			} else {
				re.WriteString("[^/]*")
			}
		case '?':
			re.WriteString("[^/]")
		default:
			re.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}
	re.WriteString("$")
	matched, err := regexp.MatchString(re.String(), branch)
	return err == nil && matched
}

func (w *Workflow) warnf(format string, args ...any) {
	w.Warnings = append(w.Warnings, fmt.Sprintf(format, args...))
}

func (w *Workflow) parseTrigger(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value != EventPullRequest {
			w.warnf("trigger event %q unsupported, only pull_request runs", node.Value)
		}
		return nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Value != EventPullRequest {
				w.warnf("trigger event %q unsupported, only pull_request runs", item.Value)
			}
		}
		return nil
	case yaml.MappingNode:
		return eachKey(node, func(event string, val *yaml.Node) error {
			if event != EventPullRequest {
				w.warnf("trigger event %q unsupported, only pull_request runs", event)
				return nil
			}
			return w.parsePullRequest(val)
		})
	default:
		return fmt.Errorf("invalid `on` value")
	}
}

func (w *Workflow) parsePullRequest(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("invalid pull_request trigger")
	}
	return eachKey(node, func(key string, val *yaml.Node) error {
		switch key {
		case "branches":
			return val.Decode(&w.Trigger.Branches)
		case "types":
			return val.Decode(&w.Trigger.Types)
		default:
			w.warnf("unknown pull_request key %q ignored", key)
			return nil
		}
	})
}

func (w *Workflow) parseJobs(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("jobs must be a mapping")
	}
	return eachKey(node, func(id string, val *yaml.Node) error {
		job, err := w.parseJob(id, val)
		if err != nil {
			return err
		}
		w.Jobs = append(w.Jobs, job)
		return nil
	})
}

func (w *Workflow) parseJob(id string, node *yaml.Node) (Job, error) {
	job := Job{ID: id}
	if node.Kind != yaml.MappingNode {
		return job, fmt.Errorf("job %q must be a mapping", id)
	}
	err := eachKey(node, func(key string, val *yaml.Node) error {
		switch key {
		case "name":
			return val.Decode(&job.Name)
		case "runs-on":
			// Placement is the hosting platform's concern.
			return nil
		case "env":
			m, err := decodeStringMap(val)
			if err != nil {
				return fmt.Errorf("job %q env: %w", id, err)
			}
			job.Env = m
			return nil
		case "steps":
			steps, err := w.parseSteps(id, val)
			if err != nil {
				return err
			}
			job.Steps = steps
			return nil
		case "needs":
			w.problems = append(w.problems, fmt.Sprintf("job %q declares needs: jobs are independent", id))
			return nil
		default:
			w.warnf("unknown key %q in job %q ignored", key, id)
			return nil
		}
	})
	return job, err
}

func (w *Workflow) parseSteps(jobID string, node *yaml.Node) ([]Step, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("job %q steps must be a sequence", jobID)
	}
	steps := make([]Step, 0, len(node.Content))
	for i, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("job %q step %d must be a mapping", jobID, i+1)
		}
		var step Step
		err := eachKey(item, func(key string, val *yaml.Node) error {
			switch key {
			case "name":
				return val.Decode(&step.Name)
			case "run":
				return val.Decode(&step.Run)
			case "uses":
				return val.Decode(&step.Uses)
			case "working-directory":
				return val.Decode(&step.WorkingDir)
			case "env":
				m, err := decodeStringMap(val)
				if err != nil {
					return fmt.Errorf("job %q step %d env: %w", jobID, i+1, err)
				}
				step.Env = m
				return nil
			case "with":
				// Action inputs travel with the action; the step is
				// skipped locally either way.
				return nil
			default:
				w.warnf("unknown key %q in job %q step %d ignored", key, jobID, i+1)
				return nil
			}
		})
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// eachKey iterates over a mapping node's key/value pairs in file order.
func eachKey(node *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// decodeStringMap decodes a mapping of scalars into a string map,
// accepting numeric and boolean values as their literal text.
func decodeStringMap(node *yaml.Node) (map[string]string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping")
	}
	m := make(map[string]string, len(node.Content)/2)
	err := eachKey(node, func(key string, val *yaml.Node) error {
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("value for %q must be a scalar", key)
		}
		m[key] = val.Value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
