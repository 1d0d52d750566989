package slackbot

import (
	"context"
	"sync"
)

// userAPI is the user lookup surface Directory needs.
type userAPI interface {
	UserName(ctx context.Context, userID string) (string, error)
}

var _ userAPI = (*Client)(nil)

// Directory resolves Slack user IDs to display names, caching results so
// a leaderboard render does not hammer users.info.
type Directory struct {
	api   userAPI
	mu    sync.Mutex
	names map[string]string
}

// NewDirectory creates a Directory backed by the given API.
func NewDirectory(api userAPI) *Directory {
	return &Directory{
		api:   api,
		names: make(map[string]string),
	}
}

// Name returns the display name for a user ID.
func (d *Directory) Name(ctx context.Context, userID string) (string, error) {
	d.mu.Lock()
	name, ok := d.names[userID]
	d.mu.Unlock()
	if ok {
		return name, nil
	}

	name, err := d.api.UserName(ctx, userID)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	d.names[userID] = name
	d.mu.Unlock()
	return name, nil
}

// Exists reports whether the user ID resolves in the workspace.
func (d *Directory) Exists(ctx context.Context, userID string) bool {
	_, err := d.Name(ctx, userID)
	return err == nil
}
