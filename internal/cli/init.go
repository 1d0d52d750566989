package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hervold/jukeboard/internal/app"
	"github.com/hervold/jukeboard/internal/domain"
	"github.com/hervold/jukeboard/internal/infra/sqlite"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter jukeboard.toml and create the database",
		Long: `Initialize the current directory for jukeboard.

This command creates:
- jukeboard.toml: a starter configuration with every key commented
- the SQLite database at the configured db_path, with the schema applied

Error conditions:
- jukeboard.toml already present: "config file already exists"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath := c.Path(domain.ConfigFileName)
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%w: %s", domain.ErrConfigExists, configPath)
			}
			if err := os.WriteFile(configPath, []byte(domain.ConfigTemplate()), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			dbPath := c.Path(c.Config.Bot.DBPath)
			store, err := sqlite.Open(dbPath)
			if err != nil {
				return fmt.Errorf("create database: %w", err)
			}
			if err := store.Close(); err != nil {
				return fmt.Errorf("close database: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Wrote %s\n", configPath)
			_, _ = fmt.Fprintf(out, "Created database %s\n", dbPath)
			return nil
		},
	}
}
