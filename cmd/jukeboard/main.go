// Package main is the entry point for the jukeboard bot.
package main

import (
	"fmt"
	"os"

	"github.com/hervold/jukeboard/internal/app"
	"github.com/hervold/jukeboard/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// Create dependency injection container
	container, err := app.New(cwd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer container.Close()

	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.Execute()
}
