package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullWorkflow(t *testing.T) {
	// Setup
	yml := `
name: CI
on:
  pull_request:
    branches: [master, main]
    types: [opened, synchronize, reopened, edited]
jobs:
  lint:
    name: Lint
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - name: Lint
        run: golangci-lint run ./...
  test:
    env:
      GOFLAGS: -count=1
    steps:
      - run: go test ./...
        working-directory: .
`

	// Execute
	wf, err := Parse([]byte(yml))

	// Assert
	require.NoError(t, err)
	require.NoError(t, wf.Validate())
	assert.Empty(t, wf.Warnings)

	assert.Equal(t, "CI", wf.Name)
	assert.Equal(t, []string{"master", "main"}, wf.Trigger.Branches)
	assert.Equal(t, []string{"opened", "synchronize", "reopened", "edited"}, wf.Trigger.Types)

	require.Len(t, wf.Jobs, 2)
	assert.Equal(t, "lint", wf.Jobs[0].ID)
	assert.Equal(t, "Lint", wf.Jobs[0].Name)
	require.Len(t, wf.Jobs[0].Steps, 2)
	assert.Equal(t, "actions/checkout@v4", wf.Jobs[0].Steps[0].Uses)
	assert.Equal(t, "golangci-lint run ./...", wf.Jobs[0].Steps[1].Run)

	assert.Equal(t, "test", wf.Jobs[1].ID)
	assert.Equal(t, "test", wf.Jobs[1].DisplayName())
	assert.Equal(t, map[string]string{"GOFLAGS": "-count=1"}, wf.Jobs[1].Env)
	assert.Equal(t, ".", wf.Jobs[1].Steps[0].WorkingDir)
}

func TestParse_DefaultBranches(t *testing.T) {
	wf, err := Parse([]byte("on: pull_request\njobs:\n  a:\n    steps:\n      - run: true\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"master", "main"}, wf.Trigger.Branches)
}

func TestParse_UnknownKeysWarn(t *testing.T) {
	// Setup
	yml := `
name: CI
concurrency: group-1
on:
  pull_request:
    branches-ignore: [wip]
jobs:
  lint:
    timeout-minutes: 10
    steps:
      - run: true
        shell: bash
`

	// Execute
	wf, err := Parse([]byte(yml))

	// Assert
	require.NoError(t, err)
	require.Len(t, wf.Warnings, 4)
	assert.Contains(t, wf.Warnings[0], `"concurrency"`)
	assert.Contains(t, wf.Warnings[1], `"branches-ignore"`)
	assert.Contains(t, wf.Warnings[2], `"timeout-minutes"`)
	assert.Contains(t, wf.Warnings[3], `"shell"`)
}

func TestParse_UnsupportedTriggersWarn(t *testing.T) {
	yml := `
on: [push, pull_request]
jobs:
  a:
    steps:
      - run: true
`
	wf, err := Parse([]byte(yml))
	require.NoError(t, err)
	require.Len(t, wf.Warnings, 1)
	assert.Contains(t, wf.Warnings[0], `"push"`)
}

func TestWorkflow_Validate(t *testing.T) {
	tests := []struct {
		name string
		yml  string
		want string
	}{
		{
			name: "no jobs",
			yml:  "name: CI\n",
			want: "workflow has no jobs",
		},
		{
			name: "job without steps",
			yml:  "jobs:\n  lint: {}\n",
			want: `job "lint" has no steps`,
		},
		{
			name: "step with run and uses",
			yml:  "jobs:\n  lint:\n    steps:\n      - run: true\n        uses: actions/checkout@v4\n",
			want: "sets both run and uses",
		},
		{
			name: "step with neither run nor uses",
			yml:  "jobs:\n  lint:\n    steps:\n      - name: empty\n",
			want: "has neither run nor uses",
		},
		{
			name: "needs rejected",
			yml:  "jobs:\n  a:\n    steps:\n      - run: true\n  b:\n    needs: a\n    steps:\n      - run: true\n",
			want: "jobs are independent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf, err := Parse([]byte(tt.yml))
			require.NoError(t, err)

			err = wf.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Error(), tt.want)
		})
	}
}

func TestWorkflow_Matches(t *testing.T) {
	wf, err := Parse([]byte("on:\n  pull_request:\n    branches: [master, main, release/*]\njobs:\n  a:\n    steps:\n      - run: true\n"))
	require.NoError(t, err)

	tests := []struct {
		name string
		ev   *Event
		want bool
	}{
		{"opened on master", &Event{Type: EventPullRequest, Action: "opened", BaseRef: "master"}, true},
		{"synchronize on main", &Event{Type: EventPullRequest, Action: "synchronize", BaseRef: "main"}, true},
		{"release glob", &Event{Type: EventPullRequest, Action: "reopened", BaseRef: "release/1.2"}, true},
		{"edited not in default types", &Event{Type: EventPullRequest, Action: "edited", BaseRef: "main"}, false},
		{"closed action", &Event{Type: EventPullRequest, Action: "closed", BaseRef: "main"}, false},
		{"feature base branch", &Event{Type: EventPullRequest, Action: "opened", BaseRef: "feature/x"}, false},
		{"non pull_request payload", &Event{Action: "opened", BaseRef: "main"}, false},
		{"nil event", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wf.Matches(tt.ev))
		})
	}
}

func TestWorkflow_Matches_ExplicitTypes(t *testing.T) {
	wf, err := Parse([]byte("on:\n  pull_request:\n    types: [opened, edited]\njobs:\n  a:\n    steps:\n      - run: true\n"))
	require.NoError(t, err)

	assert.True(t, wf.Matches(&Event{Type: EventPullRequest, Action: "edited", BaseRef: "main"}))
	assert.False(t, wf.Matches(&Event{Type: EventPullRequest, Action: "synchronize", BaseRef: "main"}))
}

func TestMatchBranch(t *testing.T) {
	tests := []struct {
		pattern string
		branch  string
		want    bool
	}{
		{"master", "master", true},
		{"master", "main", false},
		{"release/*", "release/1.2", true},
		{"release/*", "release/1.2/hotfix", false},
		{"release/**", "release/1.2/hotfix", true},
		{"v?", "v1", true},
		{"v?", "v12", false},
		{"*", "main", true},
		{"*", "release/1.2", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.branch, func(t *testing.T) {
			if got := matchBranch(tt.pattern, tt.branch); got != tt.want {
				t.Errorf("matchBranch(%q, %q) = %v, want %v", tt.pattern, tt.branch, got, tt.want)
			}
		})
	}
}

func TestWorkflow_SelectJobs(t *testing.T) {
	wf, err := Parse([]byte("jobs:\n  a:\n    steps:\n      - run: true\n  b:\n    steps:\n      - run: true\n"))
	require.NoError(t, err)

	// Empty selection returns all jobs in order
	jobs, err := wf.SelectJobs(nil)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].ID)

	// Subset
	jobs, err = wf.SelectJobs([]string{"b"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "b", jobs[0].ID)

	// Unknown ID
	_, err = wf.SelectJobs([]string{"nope"})
	assert.ErrorContains(t, err, `unknown job "nope"`)
}
