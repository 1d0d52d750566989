package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hervold/jukeboard/internal/app"
	"github.com/hervold/jukeboard/internal/infra/ghcli"
)

// errCheckFailed marks a description that did not pass. The report has
// already been printed when this is returned.
var errCheckFailed = errors.New("description check failed")

// newCheckPRCommand creates the check-pr command.
func newCheckPRCommand(c *app.Container) *cobra.Command {
	var opts struct {
		BodyFile    string
		PR          int
		Interactive bool
		Template    bool
	}

	cmd := &cobra.Command{
		Use:   "check-pr [body-file]",
		Short: "Validate a pull-request description",
		Long: `Validate that a pull-request description contains every required
section heading and that none of the sections is empty.

The body comes from a file (positional or --body-file, "-" for stdin),
from a pull request fetched with gh credentials (--pr), or from an
interactive pick among the open pull requests (--interactive).

The command exits 0 when the description passes and non-zero otherwise.

Examples:
  # Validate the body file the workflow exported
  jukeboard-ci check-pr --body-file "$PR_BODY_FILE"

  # Validate pull request #42
  jukeboard-ci check-pr --pr 42

  # Print a skeleton description
  jukeboard-ci check-pr --template`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := c.Checker()

			if opts.Template {
				fmt.Fprint(cmd.OutOrStdout(), checker.Template())
				return nil
			}

			bodyFile := opts.BodyFile
			if len(args) == 1 {
				if bodyFile != "" {
					return errors.New("body file given both as argument and --body-file")
				}
				bodyFile = args[0]
			}

			sources := 0
			for _, set := range []bool{bodyFile != "", opts.PR > 0, opts.Interactive} {
				if set {
					sources++
				}
			}
			if sources == 0 {
				return errors.New("provide a body file, --pr, or --interactive")
			}
			if sources > 1 {
				return errors.New("choose one of: body file, --pr, --interactive")
			}

			body, err := descriptionBody(c, bodyFile, opts.PR, opts.Interactive, cmd.InOrStdin())
			if err != nil {
				return err
			}

			report := checker.Check(body)
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			if !report.OK() {
				return errCheckFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.BodyFile, "body-file", "", "File holding the description to validate (- for stdin)")
	cmd.Flags().IntVar(&opts.PR, "pr", 0, "Pull request number to fetch the description from")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Pick one of the open pull requests")
	cmd.Flags().BoolVar(&opts.Template, "template", false, "Print a skeleton description and exit")

	return cmd
}

// descriptionBody fetches the description text from the selected source.
// The open-PR listing carries no bodies, so an interactive pick is always
// re-fetched through the REST endpoint.
func descriptionBody(c *app.Container, bodyFile string, pr int, interactive bool, stdin io.Reader) (string, error) {
	if bodyFile != "" {
		return readBody(bodyFile, stdin)
	}

	owner, repo, err := repoForAPI(c)
	if err != nil {
		return "", err
	}
	gc, err := ghcli.NewClient()
	if err != nil {
		return "", err
	}

	if interactive {
		prs, err := gc.OpenPullRequests(owner, repo)
		if err != nil {
			return "", err
		}
		if len(prs) == 0 {
			return "", errors.New("no open pull requests")
		}
		pr, err = ghcli.SelectPullRequest(prs)
		if err != nil {
			return "", err
		}
	}

	fetched, err := gc.PullRequest(owner, repo, pr)
	if err != nil {
		return "", err
	}
	return fetched.Body, nil
}
