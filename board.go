package raceboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/raceboard/internal/fetch"
	"github.com/jpalmerr/raceboard/internal/scrape"
	"github.com/jpalmerr/raceboard/internal/server"
	"github.com/jpalmerr/raceboard/internal/store"
)

const (
	defaultPort           = 8080
	defaultFetchTimeout   = 12 * time.Second
	defaultUpdateInterval = 5 * time.Minute
	defaultMaxRetries     = 1
)

// Board is the orchestrator tying the fetch → extract → normalize →
// snapshot pipeline to the HTTP endpoint and the last known-good cache.
//
// Create a Board with [New] and run it with [Board.Start]. The caller
// controls the lifecycle via the context; cancel it to trigger graceful
// shutdown.
type Board struct {
	svc    *scrape.Service
	slot   *store.Slot
	client *fetch.Client
	port   int
	logger *slog.Logger
}

// New creates a [Board] with the given options.
//
// A target must be configured via [WithClanTag] or [WithURL]. Other
// options have defaults: port 8080, fetch timeout 12s, update interval
// 5m, one retry on transient fetch failures.
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		port:           defaultPort,
		fetchTimeout:   defaultFetchTimeout,
		updateInterval: defaultUpdateInterval,
		maxRetries:     defaultMaxRetries,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.targetURL == "" {
		return nil, errors.New("a clan tag or URL is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	clientOpts := []fetch.ClientOption{fetch.WithMaxRetries(uint64(cfg.maxRetries))}
	if cfg.userAgent != "" {
		clientOpts = append(clientOpts, fetch.WithUserAgent(cfg.userAgent))
	}
	client := fetch.NewClient(cfg.fetchTimeout, clientOpts...)

	svc := scrape.New(client, cfg.targetURL, cfg.updateInterval,
		scrape.WithLogger(logger),
		scrape.WithRetryOnMalformed(cfg.retryOnMalformed),
	)

	return &Board{
		svc:    svc,
		slot:   store.NewSlot(),
		client: client,
		port:   cfg.port,
		logger: logger,
	}, nil
}

// Start serves the snapshot API.
//
// Start blocks until the provided context is cancelled, then shuts the
// HTTP server down gracefully. Returns nil on graceful shutdown and an
// error if the server fails to start.
func (b *Board) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	b.logger.Info("raceboard starting",
		"port", b.port,
		"url", fmt.Sprintf("http://localhost:%d/api/snapshot", b.port),
	)

	srv := server.New(b.svc, b.slot, b.port, b.logger)
	err := srv.Start(ctx)
	b.client.Close()
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}

	b.logger.Info("raceboard stopped")
	return nil
}

// ScrapeOnce runs a single pipeline pass without serving HTTP.
//
// It returns the snapshot document as JSON along with its copy-all text.
// A fetch or whole-page extraction failure yields the all-placeholder
// degraded document and a nil error; the error return is reserved for
// serialization defects.
func (b *Board) ScrapeOnce(ctx context.Context) (doc []byte, copyText string, err error) {
	snap, scrapeErr := b.svc.Snapshot(ctx)
	if scrapeErr != nil {
		b.logger.Warn("scrape failed, producing placeholder document", "error", scrapeErr)
		snap = b.svc.Fallback(scrapeErr)
	}

	doc, err = json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return doc, snap.CopyAllText, nil
}
