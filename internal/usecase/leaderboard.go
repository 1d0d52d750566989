package usecase

import (
	"context"
	"fmt"

	"github.com/hervold/jukeboard/internal/domain"
)

// LeaderboardInput contains the parameters for listing the leaderboard.
type LeaderboardInput struct {
	Limit int // Number of entries to return (0 = configured default)
}

// LeaderboardOutput contains the leaderboard entries, best first.
type LeaderboardOutput struct {
	Entries []domain.LeaderboardEntry
}

// Leaderboard is the use case for ranking tracks by average score.
type Leaderboard struct {
	tracks       domain.TrackRepository
	defaultLimit int
}

// NewLeaderboard creates a new Leaderboard use case.
func NewLeaderboard(tracks domain.TrackRepository, defaultLimit int) *Leaderboard {
	return &Leaderboard{
		tracks:       tracks,
		defaultLimit: defaultLimit,
	}
}

// Execute returns the top tracks ordered by average score, then rating
// count. Tracks nobody rated yet rank last with an average of zero.
func (uc *Leaderboard) Execute(ctx context.Context, in LeaderboardInput) (*LeaderboardOutput, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	entries, err := uc.tracks.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return &LeaderboardOutput{Entries: entries}, nil
}
