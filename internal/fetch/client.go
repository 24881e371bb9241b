// Package fetch retrieves the upstream stats page over HTTP.
//
// The package deliberately knows nothing about the page's content. It
// returns raw bytes on success and a classified [*Error] on failure so the
// pipeline can decide between retrying, falling back to a cached snapshot,
// or surfacing a placeholder document.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion under
// concurrent invocations hitting the same upstream host
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

const (
	// DefaultTimeout bounds a single upstream attempt. The hosting
	// platform's invocation limit must comfortably exceed
	// (1+MaxRetries) * DefaultTimeout.
	DefaultTimeout = 12 * time.Second

	// DefaultUserAgent mimics a browser-compatible client; the upstream
	// site serves a reduced page to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (compatible; raceboard/1.0)"

	initialBackoffInterval = 500 * time.Millisecond
	maxBackoffInterval     = 3 * time.Second
)

// ErrorKind classifies fetch failures for retry and reporting decisions.
type ErrorKind int

const (
	// KindUnreachable covers DNS, connection, and transport errors.
	KindUnreachable ErrorKind = iota

	// KindTimeout means the attempt exceeded its deadline.
	KindTimeout

	// KindStatus means the server answered with a non-2xx status code.
	KindStatus
)

// String returns a short label for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	default:
		return "unreachable"
	}
}

// Error is a classified fetch failure.
//
// StatusCode is only meaningful when Kind is [KindStatus].
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	case KindTimeout:
		return fmt.Sprintf("upstream timed out: %v", e.Err)
	default:
		return fmt.Sprintf("upstream unreachable: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether a retry could plausibly succeed.
// Timeouts, transport errors, and 5xx responses are retryable;
// 4xx responses are not.
func (e *Error) Retryable() bool {
	if e.Kind == KindStatus {
		return e.StatusCode >= 500 && e.StatusCode <= 599
	}
	return true
}

// Client fetches the upstream page.
//
// Timeouts are applied per attempt via context rather than a global client
// timeout, so one Client can serve callers with different deadlines.
type Client struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	maxRetries uint64
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithUserAgent overrides the User-Agent header sent upstream.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxRetries sets how many extra attempts [Client.FetchWithRetry]
// makes after a retryable failure. Defaults to 1.
func WithMaxRetries(n uint64) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// NewClient creates a fetch [Client] with the given per-attempt timeout.
//
// A non-positive timeout falls back to [DefaultTimeout].
func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		httpClient: &http.Client{
			// no default timeout - per-attempt timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		userAgent:  DefaultUserAgent,
		timeout:    timeout,
		maxRetries: 1,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs a single GET and returns the raw body.
//
// Failures are always a [*Error]; callers can use [errors.As] to inspect
// the kind. Bodies are capped at 1MB.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, classifyTransportError(fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}

// FetchWithRetry performs a GET with capped exponential backoff.
//
// At most maxRetries extra attempts are made, and only for retryable
// failures (timeouts, transport errors, 5xx). Client errors (4xx) abort
// immediately.
func (c *Client) FetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		var fetchErr error
		body, fetchErr = c.Fetch(ctx, url)
		if fetchErr == nil {
			return nil
		}

		var fe *Error
		if errors.As(fetchErr, &fe) && !fe.Retryable() {
			return backoff.Permanent(fetchErr)
		}
		return fetchErr
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoffInterval
	b.MaxInterval = maxBackoffInterval

	bo := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return body, nil
}

// Close closes idle connections in the client's pool.
//
// Safe to call multiple times; the client remains usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// classifyTransportError maps low-level errors onto the fetch taxonomy.
func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindUnreachable, Err: err}
}
