package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hervold/jukeboard/internal/app"
	"github.com/hervold/jukeboard/internal/ci/pipeline"
	"github.com/hervold/jukeboard/internal/ci/server"
)

// newServeCommand creates the serve command.
func newServeCommand(c *app.Container) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GitHub webhooks and run the workflow on deliveries",
		Long: `Serve GitHub pull_request webhooks and run the workflow for each
matching delivery.

Deliveries are verified against JUKEBOARD_WEBHOOK_SECRET, queued, and
executed by a bounded worker pool against the configured checkout. Every
job reports a commit status under "<status_context>/<job>". A newer
delivery for the same pull request supersedes the in-flight run.

The GitHub API is reached with GITHUB_TOKEN, or as a GitHub App when
app_id, installation_id, and private_key_path are configured.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.Secrets.ValidateServe(c.AppConfigured()); err != nil {
				return err
			}
			gh, err := c.GitHubClient()
			if err != nil {
				return err
			}

			wf, err := pipeline.Load(c.Path(c.Config.CI.Workflow))
			if err != nil {
				return err
			}
			if err := wf.Validate(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			srv := server.New(server.Config{
				Runner:        c.Runner(),
				Workflow:      wf,
				Statuses:      gh,
				Log:           c.Logger.With("component", "serve"),
				Secret:        []byte(c.Secrets.WebhookSecret),
				StatusContext: c.Config.CI.StatusContext,
				Workers:       c.Config.CI.Workers,
			})
			if addr == "" {
				addr = c.Config.GitHub.Addr
			}
			c.Logger.Info("webhook service starting", "addr", addr, "workflow", c.Path(c.Config.CI.Workflow))
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}
