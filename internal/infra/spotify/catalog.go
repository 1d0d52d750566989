// Package spotify looks up track metadata through the Spotify Web API.
package spotify

import (
	"context"
	"fmt"

	spotifyapi "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/hervold/jukeboard/internal/domain"
)

// Ensure Catalog implements domain.Catalog.
var _ domain.Catalog = (*Catalog)(nil)

// Catalog fetches track metadata using the client-credentials flow.
type Catalog struct {
	client *spotifyapi.Client
}

// New creates a Catalog authenticating with the given application
// credentials. The underlying HTTP client fetches and refreshes tokens as
// needed, so lookups may be made for the lifetime of ctx.
func New(ctx context.Context, clientID, clientSecret string) *Catalog {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return &Catalog{client: spotifyapi.New(conf.Client(ctx))}
}

// TrackDetails fetches metadata for a track ID.
func (c *Catalog) TrackDetails(ctx context.Context, id string) (*domain.TrackDetails, error) {
	full, err := c.client.GetTrack(ctx, spotifyapi.ID(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTrackLookup, err)
	}

	details := &domain.TrackDetails{
		ID:          id,
		Title:       full.Name,
		Album:       full.Album.Name,
		ReleaseDate: full.Album.ReleaseDate,
	}
	for _, artist := range full.Artists {
		details.Artists = append(details.Artists, domain.Artist{
			ID:   string(artist.ID),
			Name: artist.Name,
		})
	}
	return details, nil
}
