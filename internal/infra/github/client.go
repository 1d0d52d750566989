// Package github talks to the GitHub API for pull requests, commit
// statuses, and webhook validation.
package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"

	"github.com/hervold/jukeboard/internal/ci/pipeline"
)

// Commit status states accepted by the GitHub API.
const (
	StatePending = "pending"
	StateSuccess = "success"
	StateFailure = "failure"
	StateError   = "error"
)

// maxDescriptionLen is the GitHub API limit for status descriptions.
const maxDescriptionLen = 140

// Client wraps the GitHub API client.
type Client struct {
	gh *gogithub.Client
}

// NewWithToken creates a Client authenticating with a personal access token.
func NewWithToken(token string) *Client {
	return &Client{gh: gogithub.NewClient(nil).WithAuthToken(token)}
}

// NewWithApp creates a Client authenticating as a GitHub App installation.
func NewWithApp(appID, installationID int64, privateKeyPath string) (*Client, error) {
	itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("loading app key: %w", err)
	}
	return &Client{gh: gogithub.NewClient(&http.Client{Transport: itr})}, nil
}

// PullRequest fetches a pull request and normalizes it into an event, as if
// the head commit had just been pushed.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*pipeline.Event, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("fetching PR: %w", err)
	}

	return &pipeline.Event{
		Type:    pipeline.EventPullRequest,
		Action:  "synchronize",
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		BaseRef: pr.GetBase().GetRef(),
		HeadRef: pr.GetHead().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		Owner:   owner,
		Repo:    repo,
		URL:     pr.GetHTMLURL(),
		Number:  number,
	}, nil
}

// CreateStatus posts a commit status for sha. Descriptions beyond the API
// limit are truncated.
func (c *Client) CreateStatus(ctx context.Context, owner, repo, sha, state, statusContext, description string) error {
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen-3] + "..."
	}

	status := &gogithub.RepoStatus{
		State:       gogithub.Ptr(state),
		Context:     gogithub.Ptr(statusContext),
		Description: gogithub.Ptr(description),
	}
	if _, _, err := c.gh.Repositories.CreateStatus(ctx, owner, repo, sha, status); err != nil {
		return fmt.Errorf("creating commit status: %w", err)
	}
	return nil
}

// ValidateWebhook checks the request signature against secret and returns
// the event type and raw payload.
func ValidateWebhook(r *http.Request, secret []byte) (string, []byte, error) {
	payload, err := gogithub.ValidatePayload(r, secret)
	if err != nil {
		return "", nil, fmt.Errorf("validating payload: %w", err)
	}
	return gogithub.WebHookType(r), payload, nil
}

// EventFromPullRequest converts a pull_request webhook payload into a
// pipeline event.
func EventFromPullRequest(ev *gogithub.PullRequestEvent) *pipeline.Event {
	pr := ev.GetPullRequest()
	return &pipeline.Event{
		Type:    pipeline.EventPullRequest,
		Action:  ev.GetAction(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		BaseRef: pr.GetBase().GetRef(),
		HeadRef: pr.GetHead().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		Owner:   ev.GetRepo().GetOwner().GetLogin(),
		Repo:    ev.GetRepo().GetName(),
		URL:     pr.GetHTMLURL(),
		Number:  ev.GetNumber(),
	}
}
