package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hervold/jukeboard/internal/app"
	"github.com/hervold/jukeboard/internal/ci/pipeline"
	"github.com/hervold/jukeboard/internal/ci/tui"
	"github.com/hervold/jukeboard/internal/infra/ghcli"
	"github.com/hervold/jukeboard/internal/infra/gitctx"
)

// newRunCommand creates the run command.
func newRunCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Event    string
		BodyFile string
		Jobs     []string
		PR       int
		Watch    bool
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the workflow for a pull-request event",
		Long: `Run the CI workflow against the local checkout.

The event driving the run comes from, in order of precedence:

1. --event: a recorded GitHub pull_request payload file
2. --pr: the pull request fetched through gh credentials
3. the local checkout, as a synthetic synchronize event

Jobs run in parallel and a failing job never stops the others. The
command exits non-zero when any job fails.

Examples:
  # Run every job for the local checkout
  jukeboard-ci run

  # Run a single job with a live view
  jukeboard-ci run --watch --job lint

  # Replay a recorded webhook payload
  jukeboard-ci run --event testdata/opened.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wf, err := pipeline.Load(c.Path(c.Config.CI.Workflow))
			if err != nil {
				return err
			}
			for _, w := range wf.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			if err := wf.Validate(); err != nil {
				return err
			}

			ev, err := resolveEvent(c, opts.Event, opts.PR, opts.BodyFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if !wf.Matches(ev) {
				fmt.Fprintf(cmd.OutOrStdout(),
					"Nothing to run: %q on base %q does not match the workflow trigger.\n",
					ev.Action, ev.BaseRef)
				return nil
			}

			if opts.Watch {
				return runWatch(cmd.Context(), c, wf, ev, opts.Jobs)
			}
			return runPlain(cmd, c, wf, ev, opts.Jobs)
		},
	}

	cmd.Flags().StringVarP(&opts.Event, "event", "e", "", "Path to a pull_request event payload (JSON)")
	cmd.Flags().IntVar(&opts.PR, "pr", 0, "Pull request number to fetch the event for")
	cmd.Flags().StringVar(&opts.BodyFile, "body-file", "", "File holding the PR description for a local run (- for stdin)")
	cmd.Flags().StringArrayVarP(&opts.Jobs, "job", "j", nil, "Job ID to run (repeatable, default all)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Show a live view while the jobs run")

	return cmd
}

// runPlain executes the selected jobs and prints the summary once they
// have all settled.
func runPlain(cmd *cobra.Command, c *app.Container, wf *pipeline.Workflow, ev *pipeline.Event, jobs []string) error {
	res, err := c.Runner().Run(cmd.Context(), wf, ev, pipeline.RunOptions{Jobs: jobs})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(res))
	return failedErr(res)
}

// runWatch executes the selected jobs behind a live terminal view. The
// final summary frame stays on screen after the program exits.
func runWatch(ctx context.Context, c *app.Container, wf *pipeline.Workflow, ev *pipeline.Event, jobs []string) error {
	selected, err := wf.SelectJobs(jobs)
	if err != nil {
		return err
	}

	model := tui.New(ctx, wf.Name, selected, func(runCtx context.Context, notify pipeline.Notifier) (*pipeline.Result, error) {
		return c.Runner().Run(runCtx, wf, ev, pipeline.RunOptions{Jobs: jobs, Notify: notify})
	})
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run watch ui: %w", err)
	}

	res, err := final.(*tui.Model).Result()
	if err != nil {
		return err
	}
	return failedErr(res)
}

// failedErr maps a red run onto a non-zero process exit.
func failedErr(res *pipeline.Result) error {
	failed := 0
	for _, job := range res.Jobs {
		if job.Status == pipeline.StatusFailure {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d job(s) failed", failed, len(res.Jobs))
	}
	return nil
}

// resolveEvent produces the event driving a local run.
func resolveEvent(c *app.Container, eventPath string, pr int, bodyFile string, stdin io.Reader) (*pipeline.Event, error) {
	if eventPath != "" {
		return pipeline.LoadEvent(eventPath)
	}

	if pr > 0 {
		owner, repo, err := repoForAPI(c)
		if err != nil {
			return nil, err
		}
		gc, err := ghcli.NewClient()
		if err != nil {
			return nil, err
		}
		fetched, err := gc.PullRequest(owner, repo, pr)
		if err != nil {
			return nil, err
		}
		return fetched.Event(owner, repo), nil
	}

	gtx, err := gitctx.Load(c.Dir)
	if err != nil {
		return nil, err
	}
	ev := gtx.Event()
	if bodyFile != "" {
		body, err := readBody(bodyFile, stdin)
		if err != nil {
			return nil, err
		}
		ev.Body = body
	}
	return ev, nil
}

// repoForAPI resolves the owner and repository from the checkout, falling
// back to gh's own resolution rules.
func repoForAPI(c *app.Container) (string, string, error) {
	if gtx, err := gitctx.Load(c.Dir); err == nil && gtx.Owner != "" && gtx.Repo != "" {
		return gtx.Owner, gtx.Repo, nil
	}
	return ghcli.CurrentRepository()
}

// readBody reads a description body from path, or from stdin when path
// is "-".
func readBody(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read body file: %w", err)
	}
	return string(data), nil
}
