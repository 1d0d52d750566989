package usecase

import (
	"context"
	"fmt"

	"github.com/hervold/jukeboard/internal/domain"
)

// RemoveRatingInput contains the parameters for withdrawing a rating.
type RemoveRatingInput struct {
	TrackID   string // Spotify track ID (required)
	UserID    string // Slack user ID of the rater (required)
	Emoji     string // Reaction emoji name that was removed (required)
	MessageTS string // Timestamp of the message the reaction was removed from
}

// RemoveRatingOutput contains the result of withdrawing a rating.
// Fields are ordered to minimize memory padding.
type RemoveRatingOutput struct {
	Track   *domain.Track // Affected track (nil when the emoji was ignored)
	Removed bool          // False when the removed emoji did not match the stored score
}

// RemoveRating is the use case for withdrawing an emoji rating.
type RemoveRating struct {
	tracks domain.TrackRepository
}

// NewRemoveRating creates a new RemoveRating use case.
func NewRemoveRating(tracks domain.TrackRepository) *RemoveRating {
	return &RemoveRating{tracks: tracks}
}

// Execute deletes the user's rating when the removed reaction matches the
// stored score. Removing an emoji that differs from the stored score is a
// no-op: the user removed a reaction that never counted.
func (uc *RemoveRating) Execute(ctx context.Context, in RemoveRatingInput) (*RemoveRatingOutput, error) {
	score := domain.EmojiScore(in.Emoji)
	if score == 0 {
		return &RemoveRatingOutput{}, nil
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
	if existing == 0 {
		return nil, domain.ErrRatingNotFound
	}
	if existing != score {
		return &RemoveRatingOutput{Track: track}, nil
	}

	if err := uc.tracks.RemoveRating(ctx, in.TrackID, in.UserID); err != nil {
		return nil, fmt.Errorf("remove rating: %w", err)
	}

	return &RemoveRatingOutput{Track: track, Removed: true}, nil
}
