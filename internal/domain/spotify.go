package domain

import "regexp"

// TrackURLPrefix is the canonical Spotify track link prefix.
const TrackURLPrefix = "https://open.spotify.com/track/"

// trackLinkPattern matches Spotify track links and captures the track ID.
// Links may carry query parameters (?si=...) after the ID.
var trackLinkPattern = regexp.MustCompile(`https://open\.spotify\.com/track/([a-zA-Z0-9]+)`)

// trackIDPattern matches a bare track ID: exactly 22 base62 characters.
var trackIDPattern = regexp.MustCompile(`^[a-zA-Z0-9]{22}$`)

// ExtractTrackID returns the track ID from the first Spotify track link in
// text, or "" if text contains no track link.
func ExtractTrackID(text string) string {
	m := trackLinkPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ValidTrackID reports whether s has the shape of a Spotify track ID.
func ValidTrackID(s string) bool {
	return trackIDPattern.MatchString(s)
}
