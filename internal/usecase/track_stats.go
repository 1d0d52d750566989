package usecase

import (
	"context"
	"fmt"

	"github.com/hervold/jukeboard/internal/domain"
)

// TrackStatsInput contains the parameters for track statistics.
type TrackStatsInput struct {
	Query string // Spotify link, bare track ID, or title fragment (required)
}

// TrackStatsOutput contains the result of a track statistics lookup.
// Candidates is set instead of Stats when the query matched several titles.
type TrackStatsOutput struct {
	Stats      *domain.TrackStats
	Candidates []*domain.Track
}

// TrackStats is the use case for per-track rating statistics.
type TrackStats struct {
	tracks domain.TrackRepository
}

// NewTrackStats creates a new TrackStats use case.
func NewTrackStats(tracks domain.TrackRepository) *TrackStats {
	return &TrackStats{tracks: tracks}
}

// Execute resolves the query to a stored track and aggregates its ratings.
// A query that is neither a link nor an ID is treated as a title search;
// several matches come back as Candidates for the user to pick from.
func (uc *TrackStats) Execute(ctx context.Context, in TrackStatsInput) (*TrackStatsOutput, error) {
	trackID := domain.ExtractTrackID(in.Query)
	if trackID == "" && domain.ValidTrackID(in.Query) {
		trackID = in.Query
	}

	if trackID == "" {
		matches, err := uc.tracks.SearchTracks(ctx, in.Query)
		if err != nil {
			return nil, fmt.Errorf("search tracks: %w", err)
		}
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("%w: no title matching %q", domain.ErrTrackNotFound, in.Query)
		case 1:
			trackID = matches[0].ID
		default:
			return &TrackStatsOutput{Candidates: matches}, nil
		}
	}

	track, err := uc.tracks.Track(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("look up track: %w", err)
	}
	ratings, err := uc.tracks.Ratings(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	stats := &domain.TrackStats{Track: track}
	total := 0
	for _, r := range ratings {
		stats.Ratings = append(stats.Ratings, domain.RatingDetail{UserID: r.UserID, Score: r.Score})
		total += r.Score
	}
	if len(ratings) > 0 {
		stats.Average = float64(total) / float64(len(ratings))
	}

	return &TrackStatsOutput{Stats: stats}, nil
}
