// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hervold/jukeboard/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockTrackRepository is an in-memory test double for domain.TrackRepository.
// Tracks and ratings live in exported maps so tests can seed and inspect
// them directly. Aggregate queries return the preset fields below rather
// than recomputing the SQL semantics.
type MockTrackRepository struct {
	Tracks       map[string]*domain.Track
	TrackRatings map[string][]domain.Rating
	Entries      []domain.LeaderboardEntry
	Stats        map[string]*domain.UserStats
	ArtistInfo   map[string]*domain.ArtistStats

	SaveErr       error
	TrackErr      error
	SearchErr     error
	UpdateLinkErr error
	AddRatingErr  error
	RatingsErr    error
	StatsErr      error
}

// NewMockTrackRepository creates a new MockTrackRepository with initialized maps.
func NewMockTrackRepository() *MockTrackRepository {
	return &MockTrackRepository{
		Tracks:       make(map[string]*domain.Track),
		TrackRatings: make(map[string][]domain.Rating),
		Stats:        make(map[string]*domain.UserStats),
		ArtistInfo:   make(map[string]*domain.ArtistStats),
	}
}

// SaveTrack stores a track.
func (m *MockTrackRepository) SaveTrack(_ context.Context, track *domain.Track) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Tracks[track.ID] = track
	return nil
}

// Track retrieves a track by ID.
func (m *MockTrackRepository) Track(_ context.Context, id string) (*domain.Track, error) {
	if m.TrackErr != nil {
		return nil, m.TrackErr
	}
	track, ok := m.Tracks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTrackNotFound, id)
	}
	return track, nil
}

// SearchTracks finds tracks whose title contains the query, ordered by title.
func (m *MockTrackRepository) SearchTracks(_ context.Context, title string) ([]*domain.Track, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var matches []*domain.Track
	for _, t := range m.Tracks {
		if strings.Contains(strings.ToLower(t.Title), strings.ToLower(title)) {
			matches = append(matches, t)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Title < matches[j].Title })
	return matches, nil
}

// UpdateMessageLink sets the submission permalink for a track.
func (m *MockTrackRepository) UpdateMessageLink(_ context.Context, id, link string) error {
	if m.UpdateLinkErr != nil {
		return m.UpdateLinkErr
	}
	track, ok := m.Tracks[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTrackNotFound, id)
	}
	track.MessageLink = link
	return nil
}

// AddRating records a rating, rejecting duplicates like the real store.
func (m *MockTrackRepository) AddRating(_ context.Context, r domain.Rating) error {
	if m.AddRatingErr != nil {
		return m.AddRatingErr
	}
	for _, existing := range m.TrackRatings[r.TrackID] {
		if existing.UserID == r.UserID {
			return domain.ErrAlreadyRated
		}
	}
	m.TrackRatings[r.TrackID] = append(m.TrackRatings[r.TrackID], r)
	return nil
}

// RemoveRating deletes a user's rating for a track.
func (m *MockTrackRepository) RemoveRating(_ context.Context, trackID, userID string) error {
	ratings := m.TrackRatings[trackID]
	for i, r := range ratings {
		if r.UserID == userID {
			m.TrackRatings[trackID] = append(ratings[:i:i], ratings[i+1:]...)
			return nil
		}
	}
	return domain.ErrRatingNotFound
}

// UserRating returns the score a user gave a track, 0 if none.
func (m *MockTrackRepository) UserRating(_ context.Context, trackID, userID string) (int, error) {
	if m.RatingsErr != nil {
		return 0, m.RatingsErr
	}
	for _, r := range m.TrackRatings[trackID] {
		if r.UserID == userID {
			return r.Score, nil
		}
	}
	return 0, nil
}

// Ratings lists ratings for a track, highest score first.
func (m *MockTrackRepository) Ratings(_ context.Context, trackID string) ([]domain.Rating, error) {
	if m.RatingsErr != nil {
		return nil, m.RatingsErr
	}
	ratings := append([]domain.Rating(nil), m.TrackRatings[trackID]...)
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].Score > ratings[j].Score })
	return ratings, nil
}

// Leaderboard returns the preset entries trimmed to limit.
func (m *MockTrackRepository) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	if limit < len(m.Entries) {
		return m.Entries[:limit], nil
	}
	return m.Entries, nil
}

// UnratedBy lists tracks the user has not rated, excluding the user's own
// submissions, oldest first.
func (m *MockTrackRepository) UnratedBy(_ context.Context, userID string) ([]*domain.Track, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	var unrated []*domain.Track
	for _, t := range m.Tracks {
		if t.SubmittedBy == userID {
			continue
		}
		rated := false
		for _, r := range m.TrackRatings[t.ID] {
			if r.UserID == userID {
				rated = true
				break
			}
		}
		if !rated {
			unrated = append(unrated, t)
		}
	}
	sort.Slice(unrated, func(i, j int) bool {
		if unrated[i].CreatedAt.Equal(unrated[j].CreatedAt) {
			return unrated[i].ID < unrated[j].ID
		}
		return unrated[i].CreatedAt.Before(unrated[j].CreatedAt)
	})
	return unrated, nil
}

// UserStats returns the preset stats for a user.
func (m *MockTrackRepository) UserStats(_ context.Context, userID string) (*domain.UserStats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	if stats, ok := m.Stats[userID]; ok {
		return stats, nil
	}
	return &domain.UserStats{UserID: userID}, nil
}

// ArtistStats returns the preset stats for an artist name (case-insensitive).
func (m *MockTrackRepository) ArtistStats(_ context.Context, name string) (*domain.ArtistStats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	for key, stats := range m.ArtistInfo {
		if strings.EqualFold(key, name) {
			return stats, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrArtistNotFound, name)
}

var _ domain.TrackRepository = (*MockTrackRepository)(nil)

// MockCatalog is a test double for domain.Catalog.
type MockCatalog struct {
	Details map[string]*domain.TrackDetails
	Err     error
}

// NewMockCatalog creates a new MockCatalog with an initialized map.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{Details: make(map[string]*domain.TrackDetails)}
}

// TrackDetails returns the preset details for a track ID.
func (m *MockCatalog) TrackDetails(_ context.Context, id string) (*domain.TrackDetails, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	details, ok := m.Details[id]
	if !ok {
		return nil, fmt.Errorf("%w: no track %q", domain.ErrTrackLookup, id)
	}
	return details, nil
}

var _ domain.Catalog = (*MockCatalog)(nil)

// StatusUpdate records one commit status posted to MockGitHub.
type StatusUpdate struct {
	Owner       string
	Repo        string
	SHA         string
	State       string
	Context     string
	Description string
}

// MockGitHub is a test double for the commit status API. It is safe for
// concurrent use; workflow jobs post statuses from parallel goroutines.
type MockGitHub struct {
	mu       sync.Mutex
	statuses []StatusUpdate

	CreateStatusErr error
}

// CreateStatus records a commit status.
func (m *MockGitHub) CreateStatus(_ context.Context, owner, repo, sha, state, statusContext, description string) error {
	if m.CreateStatusErr != nil {
		return m.CreateStatusErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, StatusUpdate{
		Owner:       owner,
		Repo:        repo,
		SHA:         sha,
		State:       state,
		Context:     statusContext,
		Description: description,
	})
	return nil
}

// Statuses returns a copy of the recorded status updates.
func (m *MockGitHub) Statuses() []StatusUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StatusUpdate(nil), m.statuses...)
}
