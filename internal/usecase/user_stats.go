package usecase

import (
	"context"
	"fmt"

	"github.com/hervold/jukeboard/internal/domain"
)

// UserStatsInput contains the parameters for user statistics.
type UserStatsInput struct {
	UserID string // Slack user ID (required)
}

// UserStatsOutput contains a user's aggregated activity.
type UserStatsOutput struct {
	Stats *domain.UserStats
}

// UserStats is the use case for per-user activity statistics.
type UserStats struct {
	tracks domain.TrackRepository
}

// NewUserStats creates a new UserStats use case.
func NewUserStats(tracks domain.TrackRepository) *UserStats {
	return &UserStats{tracks: tracks}
}

// Execute aggregates the user's submissions and rating activity.
func (uc *UserStats) Execute(ctx context.Context, in UserStatsInput) (*UserStatsOutput, error) {
	stats, err := uc.tracks.UserStats(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}
	return &UserStatsOutput{Stats: stats}, nil
}
