// Package config provides YAML configuration parsing for raceboard.
//
// This package enables running raceboard as a standalone binary with a
// configuration file, as an alternative to the programmatic options on
// [github.com/jpalmerr/raceboard.New].
//
// Example configuration:
//
//	port: 8080
//	clan_tag: 9YP8UY
//	fetch_timeout: 12s
//	update_interval: 5m
//	max_retries: 1
//	retry_on_malformed: false
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// raceURLTemplate builds the upstream race page URL from a clan tag.
const raceURLTemplate = "https://cwstats.com/clan/%s/race"

const (
	defaultPort           = 8080
	defaultFetchTimeout   = 12 * time.Second
	defaultUpdateInterval = 5 * time.Minute
	defaultMaxRetries     = 1

	minFetchTimeout = 1 * time.Second
	maxFetchTimeout = 60 * time.Second
	maxMaxRetries   = 2
)

var clanTagPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

// Config is the root configuration structure for raceboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// ClanTag identifies the clan whose race page is scraped.
	// A leading '#' is tolerated and lowercase tags are uppercased.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	ClanTag string `yaml:"clan_tag"`

	// URL is the full upstream page URL. Exactly one of ClanTag and URL
	// must be set. Supports environment variable substitution.
	URL string `yaml:"url"`

	// FetchTimeout bounds a single upstream attempt.
	// Accepts duration strings like "10s", "500ms". Defaults to 12s.
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// UpdateInterval is the refresh interval echoed into every snapshot,
	// used by clients for their countdown. Defaults to 5m.
	UpdateInterval Duration `yaml:"update_interval"`

	// MaxRetries is the number of extra fetch attempts after a retryable
	// failure (timeout or 5xx). Defaults to 1, capped at 2 to bound
	// worst-case request latency.
	MaxRetries *int `yaml:"max_retries"`

	// RetryOnMalformed enables one re-fetch when a 200 response contains
	// none of the expected regions. Defaults to false.
	RetryOnMalformed bool `yaml:"retry_on_malformed"`

	// UserAgent overrides the User-Agent header sent upstream.
	// Supports environment variable substitution.
	UserAgent string `yaml:"user_agent"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// TargetURL returns the upstream page URL, built from the clan tag when
// no explicit URL is configured. Only valid after [Load] or [Parse].
func (c *Config) TargetURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(raceURLTemplate, c.ClanTag)
}

// Retries returns the effective max retry count.
func (c *Config) Retries() int {
	if c.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *c.MaxRetries
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URL, ClanTag, and UserAgent.
// Defaults are applied for Port (8080), FetchTimeout (12s),
// UpdateInterval (5m), and MaxRetries (1).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = Duration(defaultFetchTimeout)
	}
	if cfg.UpdateInterval == 0 {
		cfg.UpdateInterval = Duration(defaultUpdateInterval)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	var err error
	if c.URL, err = expandEnvVars(c.URL); err != nil {
		return fmt.Errorf("url: %w", err)
	}
	if c.ClanTag, err = expandEnvVars(c.ClanTag); err != nil {
		return fmt.Errorf("clan_tag: %w", err)
	}
	if c.UserAgent, err = expandEnvVars(c.UserAgent); err != nil {
		return fmt.Errorf("user_agent: %w", err)
	}

	if c.URL == "" && c.ClanTag == "" {
		return fmt.Errorf("one of url or clan_tag is required")
	}
	if c.URL != "" && c.ClanTag != "" {
		return fmt.Errorf("url and clan_tag are mutually exclusive")
	}

	if c.ClanTag != "" {
		c.ClanTag = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c.ClanTag), "#"))
		if !clanTagPattern.MatchString(c.ClanTag) {
			return fmt.Errorf("invalid clan_tag %q: must be alphanumeric", c.ClanTag)
		}
	}

	if c.URL != "" {
		parsedURL, err := url.Parse(c.URL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.FetchTimeout.Duration() < minFetchTimeout || c.FetchTimeout.Duration() > maxFetchTimeout {
		return fmt.Errorf("fetch_timeout must be between %s and %s, got %s",
			minFetchTimeout, maxFetchTimeout, c.FetchTimeout.Duration())
	}

	if c.UpdateInterval.Duration() < time.Second {
		return fmt.Errorf("update_interval must be at least 1s, got %s", c.UpdateInterval.Duration())
	}

	if r := c.Retries(); r < 0 || r > maxMaxRetries {
		return fmt.Errorf("max_retries must be between 0 and %d, got %d", maxMaxRetries, r)
	}

	return nil
}
