package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// EventPullRequest is the only event type that triggers workflows.
const EventPullRequest = "pull_request"

// Event is a normalized pull-request event. Events come from a GitHub
// payload file, a webhook delivery, or are synthesized from the local
// checkout. Fields are ordered to minimize memory padding.
type Event struct {
	Type    string // "pull_request", or "" for payloads of other events
	Action  string // opened, synchronize, reopened, edited, ...
	Title   string
	Body    string
	BaseRef string // base branch the pull request targets
	HeadRef string
	HeadSHA string
	Owner   string
	Repo    string
	URL     string
	Number  int
}

// Repository returns "owner/repo", or "" when unknown.
func (e *Event) Repository() string {
	if e.Owner == "" || e.Repo == "" {
		return ""
	}
	return e.Owner + "/" + e.Repo
}

// eventPayload mirrors the GitHub event JSON shape.
type eventPayload struct {
	Action      string       `json:"action,omitempty"`
	PullRequest *prPayload   `json:"pull_request,omitempty"`
	Repository  *repoPayload `json:"repository,omitempty"`
	Number      int          `json:"number,omitempty"`
}

type prPayload struct {
	Title   string     `json:"title,omitempty"`
	Body    string     `json:"body,omitempty"`
	HTMLURL string     `json:"html_url,omitempty"`
	Base    refPayload `json:"base"`
	Head    refPayload `json:"head"`
	Number  int        `json:"number"`
}

type refPayload struct {
	Ref string `json:"ref,omitempty"`
	SHA string `json:"sha,omitempty"`
}

type repoPayload struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// LoadEvent reads a GitHub event payload file.
func LoadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	ev, err := ParseEvent(data)
	if err != nil {
		return nil, fmt.Errorf("parse event %s: %w", path, err)
	}
	return ev, nil
}

// ParseEvent parses a GitHub event payload. Payloads of events other than
// pull_request produce an Event with an empty Type, which no workflow
// matches.
func ParseEvent(data []byte) (*Event, error) {
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse event payload: %w", err)
	}
	ev := &Event{Action: p.Action, Number: p.Number}
	if p.Repository != nil {
		ev.Owner = p.Repository.Owner.Login
		ev.Repo = p.Repository.Name
	}
	if p.PullRequest == nil {
		return ev, nil
	}
	ev.Type = EventPullRequest
	ev.Title = p.PullRequest.Title
	ev.Body = p.PullRequest.Body
	ev.BaseRef = p.PullRequest.Base.Ref
	ev.HeadRef = p.PullRequest.Head.Ref
	ev.HeadSHA = p.PullRequest.Head.SHA
	ev.URL = p.PullRequest.HTMLURL
	if ev.Number == 0 {
		ev.Number = p.PullRequest.Number
	}
	return ev, nil
}

// PayloadJSON renders the event back into the GitHub payload shape, for
// steps that read GITHUB_EVENT_PATH.
func (e *Event) PayloadJSON() ([]byte, error) {
	p := eventPayload{Action: e.Action, Number: e.Number}
	if e.Type == EventPullRequest {
		pr := &prPayload{
			Title:   e.Title,
			Body:    e.Body,
			HTMLURL: e.URL,
			Number:  e.Number,
		}
		pr.Base.Ref = e.BaseRef
		pr.Head.Ref = e.HeadRef
		pr.Head.SHA = e.HeadSHA
		p.PullRequest = pr
	}
	if e.Owner != "" && e.Repo != "" {
		repo := &repoPayload{Name: e.Repo}
		repo.Owner.Login = e.Owner
		p.Repository = repo
	}
	return json.MarshalIndent(&p, "", "  ")
}
