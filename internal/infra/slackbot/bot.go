package slackbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// Bot runs the socket-mode connection and routes incoming envelopes to
// the handlers. Events are processed one at a time, in arrival order, so
// a rating for a track always sees the submission that preceded it.
type Bot struct {
	socket   *socketmode.Client
	handlers *Handlers
	log      *slog.Logger
}

// NewBot creates a Bot over the given client.
func NewBot(client *Client, handlers *Handlers, log *slog.Logger) *Bot {
	return &Bot{
		socket:   client.Socket(),
		handlers: handlers,
		log:      log,
	}
}

// Run connects to Slack and dispatches events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go b.dispatch(ctx)

	err := b.socket.RunContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("socket mode connection: %w", err)
	}
	return nil
}

func (b *Bot) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socket.Events:
			if !ok {
				return
			}
			b.route(ctx, evt)
		}
	}
}

func (b *Bot) route(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.log.Info("connecting to slack")
	case socketmode.EventTypeConnectionError:
		b.log.Warn("slack connection failed, retrying")
	case socketmode.EventTypeConnected:
		b.log.Info("connected to slack")
	case socketmode.EventTypeEventsAPI:
		event, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.ack(evt)
		b.routeEvent(ctx, event)
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		b.ack(evt)
		b.handlers.HandleCommand(ctx, cmd)
	}
}

func (b *Bot) routeEvent(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		b.handlers.HandleMessage(ctx, ev)
	case *slackevents.ReactionAddedEvent:
		b.handlers.HandleReactionAdded(ctx, ev)
	case *slackevents.ReactionRemovedEvent:
		b.handlers.HandleReactionRemoved(ctx, ev)
	}
}

// ack acknowledges a socket-mode envelope. Slack redelivers events that
// are not acknowledged in time.
func (b *Bot) ack(evt socketmode.Event) {
	if evt.Request != nil {
		b.socket.Ack(*evt.Request)
	}
}
