package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/hervold/jukeboard/internal/domain"
)

// LoadSecrets reads credentials from the environment. A .env file in dir is
// loaded first when present; variables already set in the real environment win.
func LoadSecrets(dir string) (*domain.Secrets, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	return &domain.Secrets{
		SlackBotToken:       os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken:       os.Getenv("SLACK_APP_TOKEN"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		GitHubToken:         os.Getenv("GITHUB_TOKEN"),
		WebhookSecret:       os.Getenv("JUKEBOARD_WEBHOOK_SECRET"),
	}, nil
}
