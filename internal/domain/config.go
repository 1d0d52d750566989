package domain

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigFileName is the configuration file name looked up in the
// repository root and the global config directory.
const ConfigFileName = "jukeboard.toml"

// GlobalConfigDir returns the global config directory under configHome
// (e.g. ~/.config/jukeboard).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, "jukeboard")
}

// Config represents the application configuration loaded from
// jukeboard.toml. Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string     `toml:"-"` // Unknown-key warnings collected by the loader
	Bot      BotConfig    `toml:"bot"`
	Log      LogConfig    `toml:"log"`
	CI       CIConfig     `toml:"ci"`
	GitHub   GitHubConfig `toml:"github"`
}

// BotConfig holds settings for the Slack bot from the [bot] section.
type BotConfig struct {
	DBPath           string `toml:"db_path,omitempty"`           // SQLite database path
	LeaderboardLimit int    `toml:"leaderboard_limit,omitempty"` // Default /leaderboard size
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // debug, info, warn, error
	File  string `toml:"file,omitempty"`  // Log file path (empty = stderr only)
}

// CIConfig holds CI runner settings from the [ci] section.
type CIConfig struct {
	Workflow         string   `toml:"workflow,omitempty"`          // Workflow file path
	Checkout         string   `toml:"checkout,omitempty"`          // Repository checkout directory
	RequiredSections []string `toml:"required_sections,omitempty"` // PR description headings
	StatusContext    string   `toml:"status_context,omitempty"`    // Commit status context prefix
	Workers          int      `toml:"workers,omitempty"`           // Concurrent runs in serve mode
}

// GitHubConfig holds GitHub access settings from the [github] section.
// Tokens and the webhook secret come from the environment, never the file.
type GitHubConfig struct {
	Addr           string `toml:"addr,omitempty"`             // serve listen address
	PrivateKeyPath string `toml:"private_key_path,omitempty"` // GitHub App private key (PEM)
	AppID          int64  `toml:"app_id,omitempty"`
	InstallationID int64  `toml:"installation_id,omitempty"`
}

// DefaultConfig returns the configuration defaults applied before any file
// is merged in.
func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			DBPath:           "jukeboard.db",
			LeaderboardLimit: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
		CI: CIConfig{
			Workflow:      ".github/workflows/ci.yml",
			Checkout:      ".",
			StatusContext: "jukeboard-ci",
			Workers:       2,
			RequiredSections: []string{
				"Description of problem:",
				"Description of solution:",
				"Testing done:",
				"Closes:",
			},
		},
		GitHub: GitHubConfig{
			Addr: ":8410",
		},
	}
}

// ConfigTemplate returns the starter jukeboard.toml written by `jukeboard init`.
func ConfigTemplate() string {
	return configTemplateContent
}

// Secrets holds credentials read from the environment.
type Secrets struct {
	SlackBotToken       string // SLACK_BOT_TOKEN
	SlackAppToken       string // SLACK_APP_TOKEN
	SpotifyClientID     string // SPOTIFY_CLIENT_ID
	SpotifyClientSecret string // SPOTIFY_CLIENT_SECRET
	GitHubToken         string // GITHUB_TOKEN
	WebhookSecret       string // JUKEBOARD_WEBHOOK_SECRET
}

// ValidateBot checks that the secrets the bot daemon needs are present.
func (s *Secrets) ValidateBot() error {
	var missing []string
	if s.SlackBotToken == "" {
		missing = append(missing, "SLACK_BOT_TOKEN")
	}
	if s.SlackAppToken == "" {
		missing = append(missing, "SLACK_APP_TOKEN")
	}
	if s.SpotifyClientID == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if s.SpotifyClientSecret == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateServe checks the secrets webhook serve mode needs. App
// authentication replaces the token when configured, so the token is only
// required without App credentials.
func (s *Secrets) ValidateServe(appConfigured bool) error {
	var missing []string
	if s.WebhookSecret == "" {
		missing = append(missing, "JUKEBOARD_WEBHOOK_SECRET")
	}
	if !appConfigured && s.GitHubToken == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return nil
}
