package usecase

import (
	"context"
	"fmt"

	"github.com/hervold/jukeboard/internal/domain"
)

// UnratedTracksInput contains the parameters for listing unrated tracks.
type UnratedTracksInput struct {
	UserID string // User whose backlog to list (required)
}

// UnratedTracksOutput contains the tracks the user has not rated yet.
type UnratedTracksOutput struct {
	Tracks []*domain.Track
}

// UnratedTracks is the use case for listing a user's rating backlog.
type UnratedTracks struct {
	tracks domain.TrackRepository
}

// NewUnratedTracks creates a new UnratedTracks use case.
func NewUnratedTracks(tracks domain.TrackRepository) *UnratedTracks {
	return &UnratedTracks{tracks: tracks}
}

// Execute lists the tracks the user has not rated, oldest first. The
// user's own submissions are excluded since users do not rate themselves.
func (uc *UnratedTracks) Execute(ctx context.Context, in UnratedTracksInput) (*UnratedTracksOutput, error) {
	tracks, err := uc.tracks.UnratedBy(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("list unrated tracks: %w", err)
	}
	return &UnratedTracksOutput{Tracks: tracks}, nil
}
