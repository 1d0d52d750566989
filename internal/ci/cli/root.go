// Package cli provides the command-line interface for jukeboard-ci.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hervold/jukeboard/internal/app"
)

// NewRootCommand creates the root command for jukeboard-ci.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "jukeboard-ci",
		Short: "Pull-request workflow runner",
		Long: `jukeboard-ci runs the repository CI workflow for pull-request events,
either locally or as a webhook service. A matching event starts every
job in the workflow in parallel, each as an isolated sequence of
commands, and the run is red as soon as any job fails.

Events come from a recorded GitHub payload (--event), the GitHub API
(--pr), or are synthesized from the local checkout.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
	}

	root.AddCommand(
		newRunCommand(c),
		newCheckPRCommand(c),
		newServeCommand(c),
		newVersionCommand(version),
	)

	return root
}
