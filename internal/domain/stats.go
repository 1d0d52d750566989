package domain

// LeaderboardEntry is one row of the channel leaderboard.
// Fields are ordered to minimize memory padding.
type LeaderboardEntry struct {
	TrackID string
	Title   string
	Artists string // artist names joined with ", "
	Average float64
	Count   int
}

// RatingDetail pairs a rater with the score they gave.
type RatingDetail struct {
	UserID string
	Score  int
}

// TrackStats aggregates the ratings a single track has received.
type TrackStats struct {
	Track   *Track
	Ratings []RatingDetail // ordered by score, highest first
	Average float64
}

// UserStats aggregates a user's submissions and rating activity.
// Fields are ordered to minimize memory padding.
type UserStats struct {
	UserID       string
	TopTracks    []LeaderboardEntry // user's submissions by average score
	TopArtists   []ArtistCount      // artists the user submits most
	AvgGiven     float64
	AvgReceived  float64
	RatedPercent float64 // share of other users' tracks rated, in percent
	Submitted    int
	RatingsGiven int
	Rated        int // other users' tracks this user has rated
	Rateable     int // other users' tracks available to rate
}

// ArtistCount is an artist with a submission count and average score.
type ArtistCount struct {
	Name    string
	Average float64
	Count   int
}

// ArtistStats aggregates ratings across an artist's tracks.
type ArtistStats struct {
	Name      string
	TopTracks []LeaderboardEntry
	Average   float64
	Tracks    int
}
