package domain

import "errors"

// Domain errors.
var (
	ErrNoTrackLink    = errors.New("no spotify track link found")
	ErrTrackNotFound  = errors.New("track not found")
	ErrTrackLookup    = errors.New("track lookup failed")
	ErrNoMessageLink  = errors.New("track has no original message link")
	ErrNotOriginal    = errors.New("reaction is not on the original submission message")
	ErrAlreadyRated   = errors.New("user already rated this track")
	ErrRatingNotFound = errors.New("rating not found")
	ErrArtistNotFound = errors.New("artist not found")
	ErrInvalidCount   = errors.New("count must be a positive number")
	ErrInvalidScore   = errors.New("score must be between 1 and 10")
	ErrMissingEnv     = errors.New("missing required environment variable")
	ErrConfigExists   = errors.New("config file already exists")
)

// NotOriginalError reports a reaction placed on a message other than the
// track's original submission. Link is the permalink of the original
// message so callers can point the user at it.
type NotOriginalError struct {
	Link string
}

func (e *NotOriginalError) Error() string {
	return ErrNotOriginal.Error()
}

// Is matches ErrNotOriginal so errors.Is works across the typed form.
func (e *NotOriginalError) Is(target error) bool {
	return target == ErrNotOriginal
}
