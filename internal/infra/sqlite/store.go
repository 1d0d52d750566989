// Package sqlite provides a SQLite-backed implementation of TrackRepository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/hervold/jukeboard/internal/domain"
)

// Ensure Store implements domain.TrackRepository.
var _ domain.TrackRepository = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	album TEXT NOT NULL,
	user TEXT NOT NULL,
	message_link TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS artists (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL
);

CREATE TABLE IF NOT EXISTS track_artists (
	track_id TEXT NOT NULL REFERENCES tracks (id),
	artist_id TEXT NOT NULL REFERENCES artists (id),
	PRIMARY KEY (track_id, artist_id)
);

CREATE TABLE IF NOT EXISTS ratings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	track_id TEXT NOT NULL REFERENCES tracks (id),
	user TEXT NOT NULL,
	score INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (track_id, user)
);
`

// artistNames is a correlated subquery yielding a track's artist names in
// submission order, joined with ", ". Expects the outer query to alias the
// tracks table as s.
const artistNames = `(SELECT GROUP_CONCAT(a2.name, ', ')
	FROM (SELECT DISTINCT a1.name, ta1.ROWID
		FROM track_artists ta1
		JOIN artists a1 ON ta1.artist_id = a1.id
		WHERE ta1.track_id = s.id
		ORDER BY ta1.ROWID) a2)`

// Store implements domain.TrackRepository using a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens the database at path, creating it and the schema as needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTrack stores a track with its artists and submitter. Saving an
// already-stored track updates title and album but keeps the original
// submitter and submission time.
func (s *Store) SaveTrack(ctx context.Context, track *domain.Track) error {
	createdAt := track.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tracks (id, title, album, user, message_link, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, album = excluded.album`,
		track.ID, track.Title, track.Album, track.SubmittedBy, nullable(track.MessageLink), createdAt)
	if err != nil {
		return fmt.Errorf("insert track: %w", err)
	}

	for _, artist := range track.Artists {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO artists (id, name) VALUES (?, ?)`,
			artist.ID, artist.Name); err != nil {
			return fmt.Errorf("insert artist: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO track_artists (track_id, artist_id) VALUES (?, ?)`,
			track.ID, artist.ID); err != nil {
			return fmt.Errorf("link artist: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit track: %w", err)
	}
	return nil
}

// Track retrieves a track by Spotify ID.
func (s *Store) Track(ctx context.Context, id string) (*domain.Track, error) {
	track := &domain.Track{}
	var link sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, album, user, message_link, created_at
		FROM tracks WHERE id = ?`, id).
		Scan(&track.ID, &track.Title, &track.Album, &track.SubmittedBy, &link, &track.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch track: %w", err)
	}
	track.MessageLink = link.String

	track.Artists, err = s.trackArtists(ctx, id)
	if err != nil {
		return nil, err
	}
	return track, nil
}

// SearchTracks finds tracks whose title contains the query, ordered by title.
func (s *Store) SearchTracks(ctx context.Context, title string) ([]*domain.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM tracks WHERE title LIKE ? ORDER BY title`, "%"+title+"%")
	if err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan track id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search tracks: %w", err)
	}

	tracks := make([]*domain.Track, 0, len(ids))
	for _, id := range ids {
		track, err := s.Track(ctx, id)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// UpdateMessageLink sets the submission permalink for a track.
func (s *Store) UpdateMessageLink(ctx context.Context, id, link string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tracks SET message_link = ? WHERE id = ?`, link, id)
	if err != nil {
		return fmt.Errorf("update message link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update message link: %w", err)
	}
	if n == 0 {
		return domain.ErrTrackNotFound
	}
	return nil
}

// AddRating records a user's score for a track. Each user gets one rating
// per track; a second insert reports ErrAlreadyRated.
func (s *Store) AddRating(ctx context.Context, r domain.Rating) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (track_id, user, score, created_at)
		VALUES (?, ?, ?, ?)`,
		r.TrackID, r.UserID, r.Score, createdAt)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return domain.ErrAlreadyRated
	}
	if err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

// RemoveRating deletes a user's rating for a track.
func (s *Store) RemoveRating(ctx context.Context, trackID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM ratings WHERE track_id = ? AND user = ?`, trackID, userID)
	if err != nil {
		return fmt.Errorf("remove rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove rating: %w", err)
	}
	if n == 0 {
		return domain.ErrRatingNotFound
	}
	return nil
}

// UserRating returns the score a user gave a track, 0 if none.
func (s *Store) UserRating(ctx context.Context, trackID, userID string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx, `
		SELECT score FROM ratings WHERE track_id = ? AND user = ?`, trackID, userID).
		Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("fetch rating: %w", err)
	}
	return score, nil
}

// Ratings lists all ratings for a track, highest score first.
func (s *Store) Ratings(ctx context.Context, trackID string) ([]domain.Rating, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user, score, created_at FROM ratings
		WHERE track_id = ?
		ORDER BY score DESC, created_at`, trackID)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ratings []domain.Rating
	for rows.Next() {
		r := domain.Rating{TrackID: trackID}
		if err := rows.Scan(&r.UserID, &r.Score, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch ratings: %w", err)
	}
	return ratings, nil
}

// Leaderboard returns the top tracks ordered by average score, then by
// rating count. Tracks without ratings are included with average 0 so
// fresh submissions still show up.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.id,
			s.title,
			COALESCE(AVG(r.score), 0) AS average_score,
			COUNT(DISTINCT r.id) AS rating_count,
			`+artistNames+` AS artists
		FROM tracks s
		LEFT JOIN ratings r ON s.id = r.track_id
		LEFT JOIN track_artists ta ON s.id = ta.track_id
		LEFT JOIN artists a ON ta.artist_id = a.id
		GROUP BY s.id, s.title
		HAVING COUNT(a.id) > 0
		ORDER BY average_score DESC, rating_count DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		var names sql.NullString
		if err := rows.Scan(&entry.TrackID, &entry.Title, &entry.Average, &entry.Count, &names); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entry.Artists = names.String
		if entry.Artists == "" {
			entry.Artists = "Unknown"
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	return entries, nil
}

// UnratedBy lists tracks the user has not rated yet, excluding the user's
// own submissions, oldest first.
func (s *Store) UnratedBy(ctx context.Context, userID string) ([]*domain.Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.album, s.user, s.message_link, s.created_at
		FROM tracks s
		WHERE s.id NOT IN (SELECT track_id FROM ratings WHERE user = ?)
		AND s.user != ?
		ORDER BY s.created_at, s.id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch unrated tracks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tracks []*domain.Track
	for rows.Next() {
		track := &domain.Track{}
		var link sql.NullString
		if err := rows.Scan(&track.ID, &track.Title, &track.Album, &track.SubmittedBy, &link, &track.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		track.MessageLink = link.String
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch unrated tracks: %w", err)
	}

	for _, track := range tracks {
		track.Artists, err = s.trackArtists(ctx, track.ID)
		if err != nil {
			return nil, err
		}
	}
	return tracks, nil
}

// UserStats aggregates a user's submissions and rating activity.
func (s *Store) UserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	stats := &domain.UserStats{UserID: userID}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tracks WHERE user = ?`, userID).Scan(&stats.Submitted)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(score), 0) FROM ratings WHERE user = ?`, userID).
		Scan(&stats.RatingsGiven, &stats.AvgGiven)
	if err != nil {
		return nil, fmt.Errorf("count ratings given: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(r.score), 0)
		FROM ratings r
		JOIN tracks s ON r.track_id = s.id
		WHERE s.user = ?`, userID).Scan(&stats.AvgReceived)
	if err != nil {
		return nil, fmt.Errorf("average received: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(DISTINCT s.id) AS rateable,
			COUNT(DISTINCT r.track_id) AS rated
		FROM tracks s
		LEFT JOIN ratings r ON s.id = r.track_id AND r.user = ?
		WHERE s.user != ?`, userID, userID).Scan(&stats.Rateable, &stats.Rated)
	if err != nil {
		return nil, fmt.Errorf("rating coverage: %w", err)
	}
	if stats.Rateable > 0 {
		stats.RatedPercent = float64(stats.Rated) / float64(stats.Rateable) * 100
	}

	stats.TopTracks, err = s.userTopTracks(ctx, userID, 3)
	if err != nil {
		return nil, err
	}
	stats.TopArtists, err = s.userTopArtists(ctx, userID, 3)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// userTopTracks returns the highest-rated tracks a user submitted.
func (s *Store) userTopTracks(ctx context.Context, userID string, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.id,
			s.title,
			COALESCE(AVG(r.score), 0) AS average_score,
			COUNT(DISTINCT r.id) AS rating_count,
			`+artistNames+` AS artists
		FROM tracks s
		LEFT JOIN ratings r ON s.id = r.track_id
		WHERE s.user = ?
		GROUP BY s.id
		HAVING rating_count > 0
		ORDER BY average_score DESC, rating_count DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch top tracks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// userTopArtists returns the artists a user submits most.
func (s *Store) userTopArtists(ctx context.Context, userID string, limit int) ([]domain.ArtistCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			a.name,
			COUNT(DISTINCT s.id) AS track_count,
			COALESCE(AVG(r.score), 0) AS average_score
		FROM artists a
		JOIN track_artists ta ON a.id = ta.artist_id
		JOIN tracks s ON ta.track_id = s.id
		LEFT JOIN ratings r ON s.id = r.track_id
		WHERE s.user = ?
		GROUP BY a.id, a.name
		ORDER BY track_count DESC, average_score DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch top artists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var artists []domain.ArtistCount
	for rows.Next() {
		var ac domain.ArtistCount
		if err := rows.Scan(&ac.Name, &ac.Count, &ac.Average); err != nil {
			return nil, fmt.Errorf("scan artist row: %w", err)
		}
		artists = append(artists, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch top artists: %w", err)
	}
	return artists, nil
}

// ArtistStats aggregates ratings for an artist. The name match is
// case-insensitive and falls back to a substring match.
func (s *Store) ArtistStats(ctx context.Context, name string) (*domain.ArtistStats, error) {
	var artistID, artistName string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM artists WHERE name = ? COLLATE NOCASE`, name).
		Scan(&artistID, &artistName)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, `
			SELECT id, name FROM artists WHERE name LIKE ? ORDER BY name LIMIT 1`, "%"+name+"%").
			Scan(&artistID, &artistName)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrArtistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch artist: %w", err)
	}

	stats := &domain.ArtistStats{Name: artistName}
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(r.score), 0), COUNT(DISTINCT s.id)
		FROM tracks s
		JOIN track_artists ta ON s.id = ta.track_id
		LEFT JOIN ratings r ON s.id = r.track_id
		WHERE ta.artist_id = ?`, artistID).Scan(&stats.Average, &stats.Tracks)
	if err != nil {
		return nil, fmt.Errorf("artist averages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.id,
			s.title,
			COALESCE(AVG(r.score), 0) AS average_score,
			COUNT(DISTINCT r.id) AS rating_count,
			`+artistNames+` AS artists
		FROM tracks s
		JOIN track_artists ta ON s.id = ta.track_id AND ta.artist_id = ?
		LEFT JOIN ratings r ON s.id = r.track_id
		GROUP BY s.id, s.title
		ORDER BY average_score DESC, rating_count DESC
		LIMIT 5`, artistID)
	if err != nil {
		return nil, fmt.Errorf("fetch artist tracks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats.TopTracks, err = scanEntries(rows)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// trackArtists returns a track's artists in submission order.
func (s *Store) trackArtists(ctx context.Context, trackID string) ([]domain.Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name
		FROM track_artists ta
		JOIN artists a ON ta.artist_id = a.id
		WHERE ta.track_id = ?
		ORDER BY ta.ROWID`, trackID)
	if err != nil {
		return nil, fmt.Errorf("fetch artists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var artists []domain.Artist
	for rows.Next() {
		var a domain.Artist
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch artists: %w", err)
	}
	return artists, nil
}

// scanEntries reads leaderboard-shaped rows.
func scanEntries(rows *sql.Rows) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var entry domain.LeaderboardEntry
		var names sql.NullString
		if err := rows.Scan(&entry.TrackID, &entry.Title, &entry.Average, &entry.Count, &names); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entry.Artists = names.String
		if entry.Artists == "" {
			entry.Artists = "Unknown"
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return entries, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
