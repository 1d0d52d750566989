package usecase

import (
	"context"
	"testing"

	"github.com/hervold/jukeboard/internal/domain"
	"github.com/hervold/jukeboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtistStats_Execute(t *testing.T) {
	// Setup
	repo := testutil.NewMockTrackRepository()
	repo.ArtistInfo["Queen"] = &domain.ArtistStats{
		Name:    "Queen",
		Tracks:  2,
		Average: 7.3,
	}
	uc := NewArtistStats(repo)

	// Execute: case differs from the stored name
	out, err := uc.Execute(context.Background(), ArtistStatsInput{Name: "queen"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Queen", out.Stats.Name)
	assert.Equal(t, 2, out.Stats.Tracks)
}

func TestArtistStats_Execute_NotFound(t *testing.T) {
	// Setup
	repo := testutil.NewMockTrackRepository()
	uc := NewArtistStats(repo)

	// Execute
	_, err := uc.Execute(context.Background(), ArtistStatsInput{Name: "Nobody"})

	// Assert
	assert.ErrorIs(t, err, domain.ErrArtistNotFound)
}

func TestArtistStats_Execute_EmptyName(t *testing.T) {
	// Setup
	repo := testutil.NewMockTrackRepository()
	uc := NewArtistStats(repo)

	// Execute
	_, err := uc.Execute(context.Background(), ArtistStatsInput{Name: "   "})

	// Assert
	assert.ErrorIs(t, err, domain.ErrArtistNotFound)
}

func TestPing_Execute(t *testing.T) {
	// Setup
	uc := NewPing()

	// Execute
	out := uc.Execute(context.Background())

	// Assert
	assert.Equal(t, "Pong!", out.Message)
}
