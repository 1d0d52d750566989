// Package cli provides the command-line interface for the jukeboard bot.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hervold/jukeboard/internal/app"
)

// runBotFunc is a function variable for starting the bot daemon, allowing it
// to be mocked in tests.
var runBotFunc = runBot

// NewRootCommand creates the root command for jukeboard.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "jukeboard",
		Short: "Slack bot that collects and rates Spotify tracks",
		Long: `jukeboard watches a Slack channel for Spotify track links, stores every
submission, and turns number-emoji reactions into ratings. Slash commands
expose a leaderboard, unrated-track lists, and per-track, per-user, and
per-artist statistics.

Running jukeboard with no arguments starts the bot daemon. It needs
SLACK_BOT_TOKEN, SLACK_APP_TOKEN, SPOTIFY_CLIENT_ID, and
SPOTIFY_CLIENT_SECRET in the environment (a .env file next to
jukeboard.toml works too).`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBotFunc(cmd.Context(), c)
		},
	}

	root.AddCommand(
		newInitCommand(c),
		newVersionCommand(version),
	)

	return root
}
