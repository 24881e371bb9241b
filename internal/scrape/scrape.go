// Package scrape runs the end-to-end pipeline for one refresh: fetch the
// upstream page, extract the three regions, normalize them into text
// blocks, and assemble a snapshot.
//
// The pipeline is strictly sequential; the three regions come from one
// already-fetched document, so there is no internal fan-out. Each call is
// an independent unit of work driven by an inbound request.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/raceboard/internal/extract"
	"github.com/jpalmerr/raceboard/internal/format"
	"github.com/jpalmerr/raceboard/internal/store"
)

// ErrNoRegions means the page fetched fine but none of the three regions
// could be located. Callers treat it like a fetch failure.
var ErrNoRegions = errors.New("no recognizable regions in upstream page")

// Fetcher retrieves the raw upstream page body.
type Fetcher interface {
	FetchWithRetry(ctx context.Context, url string) ([]byte, error)
}

// Service produces snapshots on demand.
type Service struct {
	fetcher          Fetcher
	url              string
	interval         time.Duration
	retryOnMalformed bool
	logger           *slog.Logger
	now              func() time.Time
}

// Option configures a [Service].
type Option func(*Service)

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRetryOnMalformed enables one extra fetch when a well-formed HTTP
// response yields no recognizable regions. Off by default: the upstream's
// behavior for such pages is unspecified, so this is an operator choice.
func WithRetryOnMalformed(enabled bool) Option {
	return func(s *Service) {
		s.retryOnMalformed = enabled
	}
}

// New creates a [Service] scraping the given URL. The interval is echoed
// into every snapshot as update_interval_seconds.
func New(fetcher Fetcher, url string, interval time.Duration, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		url:      url,
		interval: interval,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot runs one full pipeline pass and returns a fresh snapshot.
//
// Partial extraction failure is not an error: the failed sections carry
// placeholder text and the snapshot reports ok. An error is returned only
// when the fetch fails or when all three regions fail, in which case the
// caller falls back to the cached snapshot or to [Service.Fallback].
func (s *Service) Snapshot(ctx context.Context) (store.Snapshot, error) {
	body, err := s.fetcher.FetchWithRetry(ctx, s.url)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("fetch %s: %w", s.url, err)
	}

	res := extract.Extract(body)
	if res.AllFailed() && s.retryOnMalformed {
		s.logger.Warn("page fetched but no regions found, refetching once", "url", s.url)
		if body, err = s.fetcher.FetchWithRetry(ctx, s.url); err == nil {
			res = extract.Extract(body)
		}
	}
	if res.AllFailed() {
		return store.Snapshot{}, ErrNoRegions
	}

	s.logger.Debug("extraction finished",
		"race_rows", len(res.Race.Rows),
		"race_err", errString(res.Race.Err),
		"clan_stats_err", errString(res.ClanStats.Err),
		"battles_left_err", errString(res.BattlesLeft.Err),
	)

	raceText := format.Race(res.Race)
	clanText := format.ClanStats(res.ClanStats)
	battlesText := format.BattlesLeft(res.BattlesLeft)
	copyAll := format.CopyAll(raceText, clanText, battlesText)

	return store.NewSnapshot(s.now(), s.interval, raceText, clanText, battlesText, copyAll), nil
}

// Fallback builds the cold-start degraded snapshot: all three sections
// carry placeholder text, ok is false, and the error message is set.
func (s *Service) Fallback(cause error) store.Snapshot {
	raceText := format.Race(extract.RaceResult{Err: extract.ErrNotFound})
	clanText := format.ClanStats(extract.ClanStatsResult{Err: extract.ErrNotFound})
	battlesText := format.BattlesLeft(extract.BattlesResult{Err: extract.ErrNotFound})
	copyAll := format.CopyAll(raceText, clanText, battlesText)

	snap := store.NewSnapshot(s.now(), s.interval, raceText, clanText, battlesText, copyAll)
	msg := "upstream unavailable"
	if cause != nil {
		msg = cause.Error()
	}
	return snap.Degraded(msg)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
