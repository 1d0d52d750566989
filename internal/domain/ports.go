package domain

import (
	"context"
	"time"
)

// TrackRepository manages track and rating persistence.
type TrackRepository interface {
	// SaveTrack stores a track with its artists and submitter.
	// Saving an already-stored track updates its metadata.
	SaveTrack(ctx context.Context, track *Track) error

	// Track retrieves a track by Spotify ID.
	// Returns ErrTrackNotFound if the track is not stored.
	Track(ctx context.Context, id string) (*Track, error)

	// SearchTracks finds tracks whose title contains the query
	// (case-insensitive), ordered by title.
	SearchTracks(ctx context.Context, title string) ([]*Track, error)

	// UpdateMessageLink sets the submission permalink for a track.
	UpdateMessageLink(ctx context.Context, id, link string) error

	// AddRating records a user's score for a track.
	AddRating(ctx context.Context, r Rating) error

	// RemoveRating deletes a user's rating for a track.
	// Returns ErrRatingNotFound if the user never rated it.
	RemoveRating(ctx context.Context, trackID, userID string) error

	// UserRating returns the score a user gave a track, 0 if none.
	UserRating(ctx context.Context, trackID, userID string) (int, error)

	// Ratings lists all ratings for a track, highest score first.
	Ratings(ctx context.Context, trackID string) ([]Rating, error)

	// Leaderboard returns the top tracks ordered by average score, then
	// by rating count. Tracks without ratings rank last with average 0.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)

	// UnratedBy lists tracks the user has not rated yet, excluding the
	// user's own submissions, oldest first.
	UnratedBy(ctx context.Context, userID string) ([]*Track, error)

	// UserStats aggregates a user's submissions and rating activity.
	UserStats(ctx context.Context, userID string) (*UserStats, error)

	// ArtistStats aggregates ratings for artists matching name
	// (case-insensitive). Returns ErrArtistNotFound when no stored track
	// has such an artist.
	ArtistStats(ctx context.Context, name string) (*ArtistStats, error)
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (defaults + global + repo).
	Load() (*Config, error)
}

// Catalog looks up track metadata from the streaming service.
type Catalog interface {
	// TrackDetails fetches metadata for a track ID.
	// Lookup failures are reported as ErrTrackLookup (wrapped).
	TrackDetails(ctx context.Context, id string) (*TrackDetails, error)
}

// TrackDetails is catalog metadata for a track.
type TrackDetails struct {
	ID          string
	Title       string
	Album       string
	ReleaseDate string // as reported by the catalog (YYYY or YYYY-MM-DD)
	Artists     []Artist
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
