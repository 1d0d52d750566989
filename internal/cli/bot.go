package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hervold/jukeboard/internal/app"
	"github.com/hervold/jukeboard/internal/infra/slackbot"
)

// runBot starts the bot daemon and blocks until the connection drops or a
// shutdown signal arrives.
func runBot(ctx context.Context, c *app.Container) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := c.ConnectBot(ctx); err != nil {
		return err
	}

	log := c.Logger.With("component", "slackbot")
	client := slackbot.NewClient(c.Secrets.SlackBotToken, c.Secrets.SlackAppToken)
	handlers := slackbot.NewHandlers(client, slackbot.NewDirectory(client), c.SlackUseCases(), log)
	bot := slackbot.NewBot(client, handlers, log)

	c.Logger.Info("jukeboard starting", "db", c.Path(c.Config.Bot.DBPath))
	return bot.Run(ctx)
}
