// Package slackbot implements the Slack socket-mode transport for the bot.
package slackbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

// errNoMessage reports that no message exists at the requested timestamp.
var errNoMessage = errors.New("no message at timestamp")

// Client wraps the slice of the Slack Web API the bot uses.
type Client struct {
	api *slack.Client
}

// NewClient creates a Slack client from a bot token and an app-level
// token. The app token is required for socket mode.
func NewClient(botToken, appToken string) *Client {
	return &Client{api: slack.New(botToken, slack.OptionAppLevelToken(appToken))}
}

// Socket returns a socket-mode client over the underlying connection.
func (c *Client) Socket() *socketmode.Client {
	return socketmode.New(c.api)
}

// Permalink returns the permalink for a message.
func (c *Client) Permalink(ctx context.Context, channel, ts string) (string, error) {
	link, err := c.api.GetPermalinkContext(ctx, &slack.PermalinkParameters{Channel: channel, Ts: ts})
	if err != nil {
		return "", fmt.Errorf("get permalink: %w", err)
	}
	return link, nil
}

// MessageText returns the text of the message at ts in channel.
func (c *Client) MessageText(ctx context.Context, channel, ts string) (string, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel,
		Latest:    ts,
		Limit:     1,
		Inclusive: true,
	})
	if err != nil {
		return "", fmt.Errorf("fetch message: %w", err)
	}
	if len(resp.Messages) == 0 {
		return "", errNoMessage
	}
	return resp.Messages[0].Text, nil
}

// UserName returns the display name for a user ID, falling back to the
// real name and then the account name when the profile leaves it blank.
func (c *Client) UserName(ctx context.Context, userID string) (string, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("look up user %s: %w", userID, err)
	}
	switch {
	case user.Profile.DisplayName != "":
		return user.Profile.DisplayName, nil
	case user.RealName != "":
		return user.RealName, nil
	default:
		return user.Name, nil
	}
}

// PostEphemeral sends a message only the given user can see.
func (c *Client) PostEphemeral(ctx context.Context, channel, userID, text string) error {
	_, err := c.api.PostEphemeralContext(ctx, channel, userID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl())
	if err != nil {
		return fmt.Errorf("post ephemeral message: %w", err)
	}
	return nil
}

// PostChannel sends a message visible to the whole channel.
func (c *Client) PostChannel(ctx context.Context, channel, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl())
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}
