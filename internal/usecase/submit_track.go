// Package usecase contains application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/hervold/jukeboard/internal/domain"
)

// SubmitTrackInput contains the parameters for submitting a track.
// Fields are ordered to minimize memory padding.
type SubmitTrackInput struct {
	UserID    string // Slack user ID of the submitter (required)
	Text      string // Message text containing the Spotify link (required)
	Permalink string // Permalink of the submission message (may be empty)
}

// SubmitTrackOutput contains the result of submitting a track.
type SubmitTrackOutput struct {
	Track         *domain.Track        // Stored track (existing one when AlreadyExists)
	Details       *domain.TrackDetails // Catalog metadata (nil when AlreadyExists)
	AlreadyExists bool                 // True when the track was submitted before
}

// SubmitTrack is the use case for storing a shared Spotify track.
type SubmitTrack struct {
	tracks  domain.TrackRepository
	catalog domain.Catalog
	clock   domain.Clock
}

// NewSubmitTrack creates a new SubmitTrack use case.
func NewSubmitTrack(tracks domain.TrackRepository, catalog domain.Catalog, clock domain.Clock) *SubmitTrack {
	return &SubmitTrack{
		tracks:  tracks,
		catalog: catalog,
		clock:   clock,
	}
}

// Execute stores the track linked in the message text. A resubmission of a
// known track does not touch the catalog; it only backfills a missing
// message link and reports AlreadyExists.
func (uc *SubmitTrack) Execute(ctx context.Context, in SubmitTrackInput) (*SubmitTrackOutput, error) {
	trackID := domain.ExtractTrackID(in.Text)
	if trackID == "" {
		return nil, domain.ErrNoTrackLink
	}

	// Resubmission: keep the first submission authoritative.
	existing, err := uc.tracks.Track(ctx, trackID)
	if err == nil {
		if existing.MessageLink == "" && in.Permalink != "" {
			if err := uc.tracks.UpdateMessageLink(ctx, trackID, in.Permalink); err != nil {
				return nil, fmt.Errorf("update message link: %w", err)
			}
			existing.MessageLink = in.Permalink
		}
		return &SubmitTrackOutput{Track: existing, AlreadyExists: true}, nil
	}
	if !errors.Is(err, domain.ErrTrackNotFound) {
		return nil, fmt.Errorf("look up track: %w", err)
	}

	details, err := uc.catalog.TrackDetails(ctx, trackID)
	if err != nil {
		return nil, fmt.Errorf("fetch track details: %w", err)
	}

	track := &domain.Track{
		CreatedAt:   uc.clock.Now(),
		ID:          details.ID,
		Title:       details.Title,
		Album:       details.Album,
		SubmittedBy: in.UserID,
		MessageLink: in.Permalink,
		Artists:     details.Artists,
	}
	if err := uc.tracks.SaveTrack(ctx, track); err != nil {
		return nil, fmt.Errorf("save track: %w", err)
	}

	return &SubmitTrackOutput{Track: track, Details: details}, nil
}
