// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/hervold/jukeboard/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	repoDir       string // Directory holding the repository jukeboard.toml
	globalConfDir string // Path to global config directory (e.g., ~/.config/jukeboard)
}

// NewLoader creates a new Loader rooted at the given repository directory.
func NewLoader(repoDir string) *Loader {
	return &Loader{
		repoDir:       repoDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(repoDir, globalConfDir string) *Loader {
	return &Loader{
		repoDir:       repoDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (defaults + global + repo).
// Repository config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.loadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repoPath := filepath.Join(l.repoDir, domain.ConfigFileName)
	repo, err := l.loadFile(repoPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Start with default config
	base := domain.DefaultConfig()

	// If both don't exist, return default config
	if global == nil && repo == nil {
		return base, nil
	}

	// Merge: default <- global <- repo (later takes precedence)
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}

	return base, nil
}

// loadGlobal returns only the global configuration.
func (l *Loader) loadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	globalPath := filepath.Join(l.globalConfDir, domain.ConfigFileName)
	return l.loadFile(globalPath)
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		switch section {
		case "bot":
			if m, ok := value.(map[string]any); ok {
				for k, v := range m {
					switch k {
					case "db_path":
						if s, ok := v.(string); ok {
							res.Bot.DBPath = s
						}
					case "leaderboard_limit":
						if n, ok := v.(int64); ok {
							res.Bot.LeaderboardLimit = int(n)
						}
					default:
						warnings = append(warnings, fmt.Sprintf("unknown key in [bot]: %s", k))
					}
				}
			}
		case "log":
			if m, ok := value.(map[string]any); ok {
				for k, v := range m {
					switch k {
					case "level":
						if s, ok := v.(string); ok {
							res.Log.Level = s
						}
					case "file":
						if s, ok := v.(string); ok {
							res.Log.File = s
						}
					default:
						warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
					}
				}
			}
		case "ci":
			if m, ok := value.(map[string]any); ok {
				for k, v := range m {
					switch k {
					case "workflow":
						if s, ok := v.(string); ok {
							res.CI.Workflow = s
						}
					case "checkout":
						if s, ok := v.(string); ok {
							res.CI.Checkout = s
						}
					case "required_sections":
						if ss, ok := stringSlice(v); ok {
							res.CI.RequiredSections = ss
						}
					case "status_context":
						if s, ok := v.(string); ok {
							res.CI.StatusContext = s
						}
					case "workers":
						if n, ok := v.(int64); ok {
							res.CI.Workers = int(n)
						}
					default:
						warnings = append(warnings, fmt.Sprintf("unknown key in [ci]: %s", k))
					}
				}
			}
		case "github":
			if m, ok := value.(map[string]any); ok {
				for k, v := range m {
					switch k {
					case "addr":
						if s, ok := v.(string); ok {
							res.GitHub.Addr = s
						}
					case "private_key_path":
						if s, ok := v.(string); ok {
							res.GitHub.PrivateKeyPath = s
						}
					case "app_id":
						if n, ok := v.(int64); ok {
							res.GitHub.AppID = n
						}
					case "installation_id":
						if n, ok := v.(int64); ok {
							res.GitHub.InstallationID = n
						}
					default:
						warnings = append(warnings, fmt.Sprintf("unknown key in [github]: %s", k))
					}
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// stringSlice converts a raw TOML array value into a string slice.
func stringSlice(v any) ([]string, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		Bot:      base.Bot,
		Log:      base.Log,
		CI:       base.CI,
		GitHub:   base.GitHub,
		Warnings: append([]string{}, base.Warnings...),
	}

	// Add override warnings
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.Bot.DBPath != "" {
		result.Bot.DBPath = override.Bot.DBPath
	}
	if override.Bot.LeaderboardLimit != 0 {
		result.Bot.LeaderboardLimit = override.Bot.LeaderboardLimit
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Log.File != "" {
		result.Log.File = override.Log.File
	}
	if override.CI.Workflow != "" {
		result.CI.Workflow = override.CI.Workflow
	}
	if override.CI.Checkout != "" {
		result.CI.Checkout = override.CI.Checkout
	}
	if len(override.CI.RequiredSections) > 0 {
		result.CI.RequiredSections = override.CI.RequiredSections
	}
	if override.CI.StatusContext != "" {
		result.CI.StatusContext = override.CI.StatusContext
	}
	if override.CI.Workers != 0 {
		result.CI.Workers = override.CI.Workers
	}
	if override.GitHub.Addr != "" {
		result.GitHub.Addr = override.GitHub.Addr
	}
	if override.GitHub.PrivateKeyPath != "" {
		result.GitHub.PrivateKeyPath = override.GitHub.PrivateKeyPath
	}
	if override.GitHub.AppID != 0 {
		result.GitHub.AppID = override.GitHub.AppID
	}
	if override.GitHub.InstallationID != 0 {
		result.GitHub.InstallationID = override.GitHub.InstallationID
	}

	return result
}
