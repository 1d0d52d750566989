package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hervold/jukeboard/internal/domain"
)

// ArtistStatsInput contains the parameters for artist statistics.
type ArtistStatsInput struct {
	Name string // Artist name, matched case-insensitively (required)
}

// ArtistStatsOutput contains an artist's aggregated ratings.
type ArtistStatsOutput struct {
	Stats *domain.ArtistStats
}

// ArtistStats is the use case for per-artist rating statistics.
type ArtistStats struct {
	tracks domain.TrackRepository
}

// NewArtistStats creates a new ArtistStats use case.
func NewArtistStats(tracks domain.TrackRepository) *ArtistStats {
	return &ArtistStats{tracks: tracks}
}

// Execute aggregates ratings across the artist's stored tracks.
func (uc *ArtistStats) Execute(ctx context.Context, in ArtistStatsInput) (*ArtistStatsOutput, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrArtistNotFound
	}
	stats, err := uc.tracks.ArtistStats(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load artist stats: %w", err)
	}
	return &ArtistStatsOutput{Stats: stats}, nil
}
