// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hervold/jukeboard/internal/ci/pipeline"
	"github.com/hervold/jukeboard/internal/ci/prdesc"
	"github.com/hervold/jukeboard/internal/domain"
	"github.com/hervold/jukeboard/internal/infra/config"
	"github.com/hervold/jukeboard/internal/infra/github"
	"github.com/hervold/jukeboard/internal/infra/logging"
	"github.com/hervold/jukeboard/internal/infra/slackbot"
	"github.com/hervold/jukeboard/internal/infra/spotify"
	"github.com/hervold/jukeboard/internal/infra/sqlite"
	"github.com/hervold/jukeboard/internal/usecase"
)

// Container provides dependency injection for both binaries. New loads
// configuration, secrets, and logging; the bot ports stay nil until
// ConnectBot opens them, so the CI surface never touches the database or
// the Spotify API.
type Container struct {
	// Ports (interfaces bound to implementations)
	Tracks  domain.TrackRepository
	Catalog domain.Catalog
	Clock   domain.Clock

	// Configuration and credentials
	Config  *domain.Config
	Secrets *domain.Secrets

	Logger *logging.Logger

	// Dir is the directory the container was created in. Relative paths
	// from the configuration are resolved against it.
	Dir string

	store *sqlite.Store
}

// New creates a Container rooted at dir: merged configuration, secrets
// from the environment (and .env), and the configured logger.
func New(dir string) (*Container, error) {
	cfg, err := config.NewLoader(dir).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	secrets, err := config.LoadSecrets(dir)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.File, logging.ParseLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	for _, warning := range cfg.Warnings {
		logger.Warn("config", "warning", warning)
	}

	return &Container{
		Clock:   domain.RealClock{},
		Config:  cfg,
		Secrets: secrets,
		Logger:  logger,
		Dir:     dir,
	}, nil
}

// NewWithDeps creates a Container with custom dependencies for testing.
func NewWithDeps(cfg *domain.Config, tracks domain.TrackRepository, catalog domain.Catalog, clock domain.Clock, logger *logging.Logger) *Container {
	return &Container{
		Tracks:  tracks,
		Catalog: catalog,
		Clock:   clock,
		Config:  cfg,
		Secrets: &domain.Secrets{},
		Logger:  logger,
		Dir:     ".",
	}
}

// Path resolves a configured path against the container's directory.
// Absolute paths pass through unchanged.
func (c *Container) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// ConnectBot validates the bot's credentials and opens its ports: the
// SQLite store and the Spotify catalog client.
func (c *Container) ConnectBot(ctx context.Context) error {
	if err := c.Secrets.ValidateBot(); err != nil {
		return err
	}

	store, err := sqlite.Open(c.Path(c.Config.Bot.DBPath))
	if err != nil {
		return err
	}
	c.store = store
	c.Tracks = store
	c.Catalog = spotify.New(ctx, c.Secrets.SpotifyClientID, c.Secrets.SpotifyClientSecret)
	return nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	var errs []error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
		c.store = nil
	}
	if c.Logger != nil {
		if err := c.Logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logger: %w", err))
		}
	}
	return errors.Join(errs...)
}

// UseCase factory methods

// SubmitTrackUseCase returns a new SubmitTrack use case.
func (c *Container) SubmitTrackUseCase() *usecase.SubmitTrack {
	return usecase.NewSubmitTrack(c.Tracks, c.Catalog, c.Clock)
}

// RateTrackUseCase returns a new RateTrack use case.
func (c *Container) RateTrackUseCase() *usecase.RateTrack {
	return usecase.NewRateTrack(c.Tracks, c.Clock)
}

// RemoveRatingUseCase returns a new RemoveRating use case.
func (c *Container) RemoveRatingUseCase() *usecase.RemoveRating {
	return usecase.NewRemoveRating(c.Tracks)
}

// LeaderboardUseCase returns a new Leaderboard use case.
func (c *Container) LeaderboardUseCase() *usecase.Leaderboard {
	return usecase.NewLeaderboard(c.Tracks, c.Config.Bot.LeaderboardLimit)
}

// UnratedTracksUseCase returns a new UnratedTracks use case.
func (c *Container) UnratedTracksUseCase() *usecase.UnratedTracks {
	return usecase.NewUnratedTracks(c.Tracks)
}

// TrackStatsUseCase returns a new TrackStats use case.
func (c *Container) TrackStatsUseCase() *usecase.TrackStats {
	return usecase.NewTrackStats(c.Tracks)
}

// UserStatsUseCase returns a new UserStats use case.
func (c *Container) UserStatsUseCase() *usecase.UserStats {
	return usecase.NewUserStats(c.Tracks)
}

// ArtistStatsUseCase returns a new ArtistStats use case.
func (c *Container) ArtistStatsUseCase() *usecase.ArtistStats {
	return usecase.NewArtistStats(c.Tracks)
}

// PingUseCase returns a new Ping use case.
func (c *Container) PingUseCase() *usecase.Ping {
	return usecase.NewPing()
}

// SlackUseCases bundles the use cases the Slack event handlers dispatch to.
func (c *Container) SlackUseCases() slackbot.UseCases {
	return slackbot.UseCases{
		SubmitTrack:   c.SubmitTrackUseCase(),
		RateTrack:     c.RateTrackUseCase(),
		RemoveRating:  c.RemoveRatingUseCase(),
		Leaderboard:   c.LeaderboardUseCase(),
		UnratedTracks: c.UnratedTracksUseCase(),
		TrackStats:    c.TrackStatsUseCase(),
		UserStats:     c.UserStatsUseCase(),
		ArtistStats:   c.ArtistStatsUseCase(),
		Ping:          c.PingUseCase(),
	}
}

// CI factory methods

// Runner returns a workflow runner rooted at the configured checkout.
func (c *Container) Runner() *pipeline.Runner {
	return pipeline.NewRunner(c.Path(c.Config.CI.Checkout), c.Logger.Logger)
}

// Checker returns the PR description checker for the configured sections.
func (c *Container) Checker() *prdesc.Checker {
	return prdesc.New(c.Config.CI.RequiredSections)
}

// AppConfigured reports whether GitHub App credentials are configured.
func (c *Container) AppConfigured() bool {
	gh := c.Config.GitHub
	return gh.AppID != 0 && gh.InstallationID != 0 && gh.PrivateKeyPath != ""
}

// GitHubClient returns the GitHub API client, authenticating as a GitHub
// App when configured and with the access token otherwise.
func (c *Container) GitHubClient() (*github.Client, error) {
	if c.AppConfigured() {
		gh := c.Config.GitHub
		return github.NewWithApp(gh.AppID, gh.InstallationID, gh.PrivateKeyPath)
	}
	if c.Secrets.GitHubToken == "" {
		return nil, fmt.Errorf("%w: GITHUB_TOKEN", domain.ErrMissingEnv)
	}
	return github.NewWithToken(c.Secrets.GitHubToken), nil
}
