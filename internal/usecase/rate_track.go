package usecase

import (
	"context"
	"fmt"

	"github.com/hervold/jukeboard/internal/domain"
)

// RateTrackInput contains the parameters for rating a track.
type RateTrackInput struct {
	TrackID   string // Spotify track ID (required)
	UserID    string // Slack user ID of the rater (required)
	Emoji     string // Reaction emoji name, e.g. "seven" (required)
	MessageTS string // Timestamp of the message the reaction landed on
}

// RateTrackOutput contains the result of rating a track.
// Fields are ordered to minimize memory padding.
type RateTrackOutput struct {
	Track   *domain.Track // Rated track (nil when Ignored)
	Score   int           // Recorded score
	Ignored bool          // True when the emoji carries no score
}

// RateTrack is the use case for recording an emoji rating.
type RateTrack struct {
	tracks domain.TrackRepository
	clock  domain.Clock
}

// NewRateTrack creates a new RateTrack use case.
func NewRateTrack(tracks domain.TrackRepository, clock domain.Clock) *RateTrack {
	return &RateTrack{
		tracks: tracks,
		clock:  clock,
	}
}

// Execute records the rating expressed by a reaction emoji. Ratings only
// count on the track's original submission message; a reaction elsewhere
// yields a NotOriginalError pointing at it.
func (uc *RateTrack) Execute(ctx context.Context, in RateTrackInput) (*RateTrackOutput, error) {
	// "zero" is in the rating emoji set but scores nothing.
	score := domain.EmojiScore(in.Emoji)
	if score == 0 {
		return &RateTrackOutput{Ignored: true}, nil
	}

	track, err := uc.tracks.Track(ctx, in.TrackID)
	if err != nil {
		return nil, fmt.Errorf("look up track: %w", err)
	}
	if track.MessageLink == "" {
		return nil, domain.ErrNoMessageLink
	}
	if !domain.SameMessage(track.MessageLink, in.MessageTS) {
		return nil, &domain.NotOriginalError{Link: track.MessageLink}
	}

	existing, err := uc.tracks.UserRating(ctx, in.TrackID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("check existing rating: %w", err)
	}
	if existing != 0 {
		return nil, domain.ErrAlreadyRated
	}

	rating := domain.Rating{
		CreatedAt: uc.clock.Now(),
		TrackID:   in.TrackID,
		UserID:    in.UserID,
		Score:     score,
	}
	if err := uc.tracks.AddRating(ctx, rating); err != nil {
		return nil, fmt.Errorf("add rating: %w", err)
	}

	return &RateTrackOutput{Track: track, Score: score}, nil
}
