package app

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hervold/jukeboard/internal/domain"
	"github.com/hervold/jukeboard/internal/infra/logging"
	"github.com/hervold/jukeboard/internal/testutil"
)

// isolateEnv points config loading at empty temp directories and clears the
// credential variables so the host environment cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"SLACK_BOT_TOKEN",
		"SLACK_APP_TOKEN",
		"SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET",
		"GITHUB_TOKEN",
		"JUKEBOARD_WEBHOOK_SECRET",
	} {
		t.Setenv(key, "")
	}
}

func newDepsContainer() *Container {
	return NewWithDeps(
		domain.DefaultConfig(),
		testutil.NewMockTrackRepository(),
		testutil.NewMockCatalog(),
		&testutil.MockClock{NowTime: time.Now()},
		logging.Discard(),
	)
}

func TestNew_Defaults(t *testing.T) {
	// Setup
	isolateEnv(t)
	dir := t.TempDir()

	// Execute
	c, err := New(dir)
	require.NoError(t, err)
	defer c.Close()

	// Assert: defaults loaded, bot ports stay closed until ConnectBot
	assert.Equal(t, "jukeboard.db", c.Config.Bot.DBPath)
	assert.Equal(t, 10, c.Config.Bot.LeaderboardLimit)
	assert.Equal(t, "jukeboard-ci", c.Config.CI.StatusContext)
	assert.NotNil(t, c.Logger)
	assert.NotNil(t, c.Clock)
	assert.Nil(t, c.Tracks)
	assert.Nil(t, c.Catalog)
}

func TestNew_ReadsRepoConfig(t *testing.T) {
	// Setup
	isolateEnv(t)
	dir := t.TempDir()
	repoConfig := `
[bot]
leaderboard_limit = 3
stale_limit = 9
`
	err := os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(repoConfig), 0644)
	require.NoError(t, err)

	// Execute
	c, err := New(dir)
	require.NoError(t, err)
	defer c.Close()

	// Assert: repo config applied, unknown keys surfaced as warnings
	assert.Equal(t, 3, c.Config.Bot.LeaderboardLimit)
	assert.Equal(t, []string{"unknown key in [bot]: stale_limit"}, c.Config.Warnings)
}

func TestNewWithDeps_Factories(t *testing.T) {
	// Setup
	c := newDepsContainer()

	// Assert: every factory wires its use case
	assert.NotNil(t, c.SubmitTrackUseCase())
	assert.NotNil(t, c.RateTrackUseCase())
	assert.NotNil(t, c.RemoveRatingUseCase())
	assert.NotNil(t, c.LeaderboardUseCase())
	assert.NotNil(t, c.UnratedTracksUseCase())
	assert.NotNil(t, c.TrackStatsUseCase())
	assert.NotNil(t, c.UserStatsUseCase())
	assert.NotNil(t, c.ArtistStatsUseCase())
	assert.NotNil(t, c.PingUseCase())
	assert.NotNil(t, c.Runner())
	assert.NotNil(t, c.Checker())

	uc := c.SlackUseCases()
	assert.NotNil(t, uc.SubmitTrack)
	assert.NotNil(t, uc.RateTrack)
	assert.NotNil(t, uc.RemoveRating)
	assert.NotNil(t, uc.Leaderboard)
	assert.NotNil(t, uc.UnratedTracks)
	assert.NotNil(t, uc.TrackStats)
	assert.NotNil(t, uc.UserStats)
	assert.NotNil(t, uc.ArtistStats)
	assert.NotNil(t, uc.Ping)
}

func TestContainer_ConnectBot(t *testing.T) {
	// Setup
	isolateEnv(t)
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_APP_TOKEN", "xapp-test")
	t.Setenv("SPOTIFY_CLIENT_ID", "cid")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "csecret")
	dir := t.TempDir()

	c, err := New(dir)
	require.NoError(t, err)
	c.Config.Bot.DBPath = filepath.Join(dir, "jukeboard.db")

	// Execute
	err = c.ConnectBot(context.Background())
	require.NoError(t, err)

	// Assert: store and catalog are wired, database file created
	assert.NotNil(t, c.Tracks)
	assert.NotNil(t, c.Catalog)
	_, err = os.Stat(c.Config.Bot.DBPath)
	assert.NoError(t, err)

	require.NoError(t, c.Close())
}

func TestContainer_ConnectBot_MissingSecrets(t *testing.T) {
	// Setup
	isolateEnv(t)
	dir := t.TempDir()

	c, err := New(dir)
	require.NoError(t, err)
	defer c.Close()

	// Execute
	err = c.ConnectBot(context.Background())

	// Assert
	assert.ErrorIs(t, err, domain.ErrMissingEnv)
	assert.Nil(t, c.Tracks)
}

func TestContainer_GitHubClient_Token(t *testing.T) {
	// Setup
	c := newDepsContainer()
	c.Secrets.GitHubToken = "ghp_test"

	// Execute
	client, err := c.GitHubClient()

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestContainer_GitHubClient_MissingToken(t *testing.T) {
	// Setup
	c := newDepsContainer()

	// Execute
	_, err := c.GitHubClient()

	// Assert
	assert.ErrorIs(t, err, domain.ErrMissingEnv)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
}

func TestContainer_GitHubClient_App(t *testing.T) {
	// Setup: a real RSA key on disk, full App configuration, no token
	c := newDepsContainer()
	keyPath := writeTestKey(t)
	c.Config.GitHub.AppID = 7
	c.Config.GitHub.InstallationID = 11
	c.Config.GitHub.PrivateKeyPath = keyPath

	// Execute
	client, err := c.GitHubClient()

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.True(t, c.AppConfigured())
}

func TestContainer_AppConfigured_RequiresAllFields(t *testing.T) {
	// Setup
	c := newDepsContainer()
	c.Config.GitHub.AppID = 7

	// Assert: an app id alone is not an App configuration
	assert.False(t, c.AppConfigured())
}

func TestContainer_Path(t *testing.T) {
	// Setup
	c := newDepsContainer()
	c.Dir = "/srv/checkout"

	// Assert: relative paths anchor at the container dir, absolute pass through
	assert.Equal(t, filepath.Join("/srv/checkout", "jukeboard.db"), c.Path("jukeboard.db"))
	assert.Equal(t, "/var/lib/jukeboard.db", c.Path("/var/lib/jukeboard.db"))
}

func TestContainer_Close_WithoutConnect(t *testing.T) {
	// Setup
	c := newDepsContainer()

	// Execute and Assert: closing an unconnected container is fine, twice too
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

// writeTestKey writes a throwaway RSA private key in PEM form and returns
// its path.
func writeTestKey(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	path := filepath.Join(t.TempDir(), "app.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0600))
	return path
}
