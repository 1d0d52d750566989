// Package ghcli reaches the GitHub API through the gh CLI's stored
// credentials, so local runs need no token configuration.
package ghcli

import (
	"fmt"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/repository"
	graphql "github.com/cli/shurcooL-graphql"

	"github.com/hervold/jukeboard/internal/ci/pipeline"
)

// PullRequest is the subset of pull-request metadata the CI tool needs.
type PullRequest struct {
	Title     string
	Body      string
	Author    string
	State     string
	BaseRef   string
	HeadRef   string
	HeadSHA   string
	URL       string
	CreatedAt string
	Number    int
	Draft     bool
}

// Event converts the pull request into a pipeline event, as if the head
// commit had just been pushed.
func (pr *PullRequest) Event(owner, repo string) *pipeline.Event {
	return &pipeline.Event{
		Type:    pipeline.EventPullRequest,
		Action:  "synchronize",
		Title:   pr.Title,
		Body:    pr.Body,
		BaseRef: pr.BaseRef,
		HeadRef: pr.HeadRef,
		HeadSHA: pr.HeadSHA,
		Owner:   owner,
		Repo:    repo,
		URL:     pr.URL,
		Number:  pr.Number,
	}
}

// Client wraps GitHub API clients
type Client struct {
	rest api.RESTClient
	gql  api.GraphQLClient
}

// NewClient creates a Client using gh's authentication.
func NewClient() (*Client, error) {
	restClient, err := api.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	gqlClient, err := api.DefaultGraphQLClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL client: %w", err)
	}

	return &Client{
		rest: *restClient,
		gql:  *gqlClient,
	}, nil
}

// CurrentRepository resolves the repository for the working directory using
// gh's resolution rules (git remotes, GH_REPO).
func CurrentRepository() (owner, name string, err error) {
	repo, err := repository.Current()
	if err != nil {
		return "", "", fmt.Errorf("failed to get current repository: %w", err)
	}
	return repo.Owner, repo.Name, nil
}

// PullRequest fetches a single pull request.
func (c *Client) PullRequest(owner, repo string, number int) (*PullRequest, error) {
	var resp struct {
		Number    int    `json:"number"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		State     string `json:"state"`
		Draft     bool   `json:"draft"`
		HTMLURL   string `json:"html_url"`
		CreatedAt string `json:"created_at"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
		Head struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"head"`
	}

	path := fmt.Sprintf("repos/%s/%s/pulls/%d", owner, repo, number)
	if err := c.rest.Get(path, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch pull request: %w", err)
	}

	return &PullRequest{
		Title:     resp.Title,
		Body:      resp.Body,
		Author:    resp.User.Login,
		State:     resp.State,
		BaseRef:   resp.Base.Ref,
		HeadRef:   resp.Head.Ref,
		HeadSHA:   resp.Head.SHA,
		URL:       resp.HTMLURL,
		CreatedAt: resp.CreatedAt,
		Number:    resp.Number,
		Draft:     resp.Draft,
	}, nil
}

// OpenPullRequests lists open pull requests, newest first, using GraphQL.
func (c *Client) OpenPullRequests(owner, repo string) ([]PullRequest, error) {
	var q struct {
		Repository struct {
			PullRequests struct {
				Nodes []struct {
					Number    int
					Title     string
					IsDraft   bool
					CreatedAt string
					Author    struct {
						Login string
					}
				}
			} `graphql:"pullRequests(states: OPEN, first: $first, orderBy: {field: CREATED_AT, direction: DESC})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}

	variables := map[string]interface{}{
		"owner": graphql.String(owner),
		"name":  graphql.String(repo),
		"first": graphql.Int(50),
	}

	if err := c.gql.Query("", &q, variables); err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests: %w", err)
	}

	prs := make([]PullRequest, 0, len(q.Repository.PullRequests.Nodes))
	for _, node := range q.Repository.PullRequests.Nodes {
		prs = append(prs, PullRequest{
			Title:     node.Title,
			Author:    node.Author.Login,
			State:     "OPEN",
			CreatedAt: node.CreatedAt,
			Number:    node.Number,
			Draft:     node.IsDraft,
		})
	}
	return prs, nil
}
