package raceboard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	targetURL        string
	port             int
	fetchTimeout     time.Duration
	updateInterval   time.Duration
	maxRetries       int
	retryOnMalformed bool
	userAgent        string
	logger           *slog.Logger
}

// Option is a function that configures a [Board] instance during
// construction.
//
// Option implements the functional options pattern; options return an
// error if validation fails.
type Option func(*boardConfig) error

// WithClanTag sets the clan whose race page is scraped. A leading '#' is
// tolerated and lowercase tags are uppercased.
//
// Mutually exclusive with [WithURL].
func WithClanTag(tag string) Option {
	return func(cfg *boardConfig) error {
		tag = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			return errors.New("clan tag cannot be empty")
		}
		for _, r := range tag {
			if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return fmt.Errorf("invalid clan tag %q: must be alphanumeric", tag)
			}
		}
		if cfg.targetURL != "" {
			return errors.New("clan tag and URL are mutually exclusive")
		}
		cfg.targetURL = fmt.Sprintf("https://cwstats.com/clan/%s/race", tag)
		return nil
	}
}

// WithURL sets the full upstream page URL, overriding the clan-tag
// derived default. Mutually exclusive with [WithClanTag].
func WithURL(rawURL string) Option {
	return func(cfg *boardConfig) error {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return errors.New("URL must have a scheme (http:// or https://)")
		}
		if cfg.targetURL != "" {
			return errors.New("clan tag and URL are mutually exclusive")
		}
		cfg.targetURL = rawURL
		return nil
	}
}

// WithPort sets the HTTP port for the snapshot server.
//
// Defaults to 8080. Returns an error if the port is outside 1-65535.
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithFetchTimeout bounds a single upstream attempt. Defaults to 12s.
//
// Keep this well under the hosting platform's invocation limit: the
// worst-case request latency is roughly (1 + retries) times this value.
func WithFetchTimeout(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < time.Second || d > 60*time.Second {
			return errors.New("fetch timeout must be between 1s and 60s")
		}
		cfg.fetchTimeout = d
		return nil
	}
}

// WithUpdateInterval sets the refresh interval echoed into every
// snapshot as update_interval_seconds. Defaults to 5 minutes.
func WithUpdateInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < time.Second {
			return errors.New("update interval must be at least 1s")
		}
		cfg.updateInterval = d
		return nil
	}
}

// WithMaxRetries sets the number of extra fetch attempts after a
// retryable failure (timeout or 5xx). Defaults to 1, capped at 2.
func WithMaxRetries(n int) Option {
	return func(cfg *boardConfig) error {
		if n < 0 || n > 2 {
			return errors.New("max retries must be between 0 and 2")
		}
		cfg.maxRetries = n
		return nil
	}
}

// WithRetryOnMalformed enables one re-fetch when a well-formed HTTP
// response contains none of the expected regions. Off by default.
func WithRetryOnMalformed(enabled bool) Option {
	return func(cfg *boardConfig) error {
		cfg.retryOnMalformed = enabled
		return nil
	}
}

// WithUserAgent overrides the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(cfg *boardConfig) error {
		if strings.TrimSpace(ua) == "" {
			return errors.New("user agent cannot be empty")
		}
		cfg.userAgent = ua
		return nil
	}
}

// WithLogger sets the logger used by the pipeline and HTTP server.
// Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}
