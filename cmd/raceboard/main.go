// Package main is the entry point for the raceboard CLI.
//
// raceboard can be embedded as a library or run as a standalone binary
// with YAML configuration. This CLI provides the standalone approach.
//
// Usage:
//
//	raceboard serve -c config.yaml    # Serve the snapshot API
//	raceboard scrape -c config.yaml   # One-shot scrape to stdout
//	raceboard validate -c config.yaml # Validate configuration
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "raceboard",
	Short: "Clan-war race stats as JSON and copy-ready text",
	Long: `raceboard scrapes a clan-war race stats page and republishes it as a
small JSON document with three copy-ready text blocks: race standings,
clan stats, and battles remaining today.

Quick start:
  1. Create a config file (raceboard.yaml) with your clan tag
  2. Run: raceboard serve -c raceboard.yaml
  3. GET http://localhost:8080/api/snapshot

Example config:
  port: 8080
  clan_tag: 9YP8UY
  fetch_timeout: 12s
  update_interval: 5m`,
	// No Run/RunE means this just shows help when called without subcommands
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("raceboard %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// loadDotEnv loads a .env file when present, so config env substitution
// works in local development without exporting variables.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}
