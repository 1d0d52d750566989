// Package domain contains core business entities and interfaces.
package domain

import (
	"strings"
	"time"
)

// Track represents a Spotify track shared in the channel.
// Fields are ordered to minimize memory padding.
type Track struct {
	CreatedAt   time.Time // When the track was first stored
	ID          string    // Spotify track ID (22 base62 characters)
	Title       string
	Album       string
	SubmittedBy string // Slack user ID of the submitter
	MessageLink string // Permalink of the submission message (empty if unknown)
	Artists     []Artist
}

// Artist is a performing artist as reported by the catalog.
type Artist struct {
	ID   string
	Name string
}

// ArtistNames returns the track's artist names joined with ", ".
func (t *Track) ArtistNames() string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// URL returns the canonical open.spotify.com link for the track.
func (t *Track) URL() string {
	return TrackURLPrefix + t.ID
}

// Rating is a single user's score for a track.
// Fields are ordered to minimize memory padding.
type Rating struct {
	CreatedAt time.Time
	TrackID   string
	UserID    string
	Score     int // 1..10
}
