// Package gitctx derives pull-request context from the local repository.
package gitctx

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/hervold/jukeboard/internal/ci/pipeline"
)

// Context describes the checked-out repository state.
type Context struct {
	Owner   string
	Repo    string
	Branch  string
	SHA     string
	BaseRef string
}

// Load inspects the repository containing dir.
func Load(dir string) (*Context, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("read HEAD: %w", err)
	}

	ctx := &Context{
		Branch:  head.Name().Short(),
		SHA:     head.Hash().String(),
		BaseRef: defaultBase(repo),
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			ctx.Owner, ctx.Repo = parseRemoteURL(urls[0])
		}
	}
	return ctx, nil
}

// Event synthesizes the pull-request event a push of the current branch
// would produce.
func (c *Context) Event() *pipeline.Event {
	return &pipeline.Event{
		Type:    pipeline.EventPullRequest,
		Action:  "synchronize",
		BaseRef: c.BaseRef,
		HeadRef: c.Branch,
		HeadSHA: c.SHA,
		Owner:   c.Owner,
		Repo:    c.Repo,
	}
}

// defaultBase picks the local default branch.
func defaultBase(repo *git.Repository) string {
	for _, name := range []string{"master", "main"} {
		if _, err := repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
			return name
		}
	}
	return "master"
}

// parseRemoteURL extracts owner and repository from common GitHub remote
// formats (https, ssh, git).
func parseRemoteURL(url string) (owner, repo string) {
	url = strings.TrimSuffix(url, ".git")
	i := strings.Index(url, "github.com")
	if i < 0 {
		return "", ""
	}
	rest := strings.TrimLeft(url[i+len("github.com"):], ":/")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[1]
}
