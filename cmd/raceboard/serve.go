package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/raceboard"
	"github.com/jpalmerr/raceboard/config"
)

// serveCmd starts the snapshot API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the snapshot API",
	Long: `Start the raceboard HTTP server.

The server will:
  - Load configuration from the specified YAML file
  - Serve GET /api/snapshot, refreshing from the upstream page on demand
  - Fall back to the last known-good snapshot when the upstream fails

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  raceboard serve -c config.yaml
  raceboard serve --config /etc/raceboard/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	loadDotEnv()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"target", cfg.TargetURL(),
		"fetch_timeout", cfg.FetchTimeout.Duration().String(),
		"update_interval", cfg.UpdateInterval.Duration().String(),
	)

	board, err := raceboard.New(buildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	// cancel on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := board.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// buildOptions converts a parsed config into board options.
func buildOptions(cfg *config.Config, logger *slog.Logger) []raceboard.Option {
	opts := []raceboard.Option{
		raceboard.WithURL(cfg.TargetURL()),
		raceboard.WithPort(cfg.Port),
		raceboard.WithFetchTimeout(cfg.FetchTimeout.Duration()),
		raceboard.WithUpdateInterval(cfg.UpdateInterval.Duration()),
		raceboard.WithMaxRetries(cfg.Retries()),
		raceboard.WithRetryOnMalformed(cfg.RetryOnMalformed),
		raceboard.WithLogger(logger),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, raceboard.WithUserAgent(cfg.UserAgent))
	}
	return opts
}
