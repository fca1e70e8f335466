package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"reelchain/internal/config"
	"reelchain/internal/logging"
	"reelchain/internal/metrics"
	"reelchain/internal/services"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultBaseDelay = 250 * time.Millisecond
	defaultRetries   = 3
	maxResponseBytes = 8 << 20
	breakerName      = "tmdb"
)

// Timer supplies backoff waits. Tests substitute one that records delays.
type Timer interface {
	After(time.Duration) <-chan time.Time
}

// Provider is the subset of TMDB used to build puzzles.
type Provider interface {
	DiscoverByYear(ctx context.Context, year int) ([]Movie, error)
	DiscoverByCast(ctx context.Context, personID int64) ([]Movie, error)
	Credits(ctx context.Context, movieID int64) (Credits, error)
}

// Settings carries the connection parameters for a Client.
type Settings struct {
	BaseURL  string
	APIToken string
	APIKey   string
	Language string
	// MinRuntime adds with_runtime.gte to discover queries when positive.
	MinRuntime int
}

// Client fetches TMDB resources with bounded retries on server errors.
type Client struct {
	settings   Settings
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	timer      Timer
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
	now        func() time.Time
}

var _ Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetry sets the retry count for 5xx responses and the base backoff delay.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max(maxRetries, 0)
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
	}
}

// WithTimer replaces the wall-clock timer used between retries.
func WithTimer(timer Timer) Option {
	return func(c *Client) {
		c.timer = timer
	}
}

// WithRateLimiter throttles outbound attempts. A nil limiter disables throttling.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithCircuitBreaker wraps Fetch in a breaker that opens after consecutive failures.
func WithCircuitBreaker(consecutiveFailures uint32, openFor time.Duration) Option {
	return func(c *Client) {
		c.breaker = newBreaker(consecutiveFailures, openFor, c)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "tmdb")
	}
}

// New creates a TMDB client.
func New(settings Settings, opts ...Option) (*Client, error) {
	settings.APIToken = strings.TrimSpace(settings.APIToken)
	settings.APIKey = strings.TrimSpace(settings.APIKey)
	if settings.APIToken == "" && settings.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "api token or api key required", nil)
	}
	settings.BaseURL = strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
	if settings.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "base url required", nil)
	}
	settings.Language = strings.TrimSpace(settings.Language)

	client := &Client{
		settings:   settings,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultRetries,
		baseDelay:  defaultBaseDelay,
		logger:     logging.NewComponentLogger(nil, "tmdb"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client using the tmdb and retry sections of cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "config required", nil)
	}
	base := []Option{
		WithLogger(logger),
		WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		WithRetry(cfg.Retry.MaxRetries, cfg.RetryBaseDelay()),
	}
	if rps := cfg.TMDB.RequestsPerSecond; rps > 0 {
		base = append(base, WithRateLimiter(rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))))
	}
	if cfg.TMDB.CircuitBreaker {
		base = append(base, WithCircuitBreaker(5, 30*time.Second))
	}
	return New(Settings{
		BaseURL:    cfg.TMDB.BaseURL,
		APIToken:   cfg.TMDB.APIToken,
		APIKey:     cfg.TMDB.APIKey,
		Language:   cfg.TMDB.Language,
		MinRuntime: cfg.Puzzle.MinRuntime,
	}, append(base, opts...)...)
}

// Fetch performs a GET against rawURL and returns the response body.
//
// Only status codes >= 500 are retried, up to the configured retry count,
// waiting base*2^(k-1) before retry k. A 404 fails at once with a
// "resource not found" ExternalServiceError; other client errors fail at once
// carrying their status and Retry-After hint. When retries run out the final
// *StatusError is returned as is.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if c.breaker == nil {
		return c.fetchWithRetry(ctx, rawURL)
	}
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetchWithRetry(ctx, rawURL)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordTMDBAttempt(metrics.OutcomeCircuitOpen, 0)
		return nil, services.External("metadata provider circuit open", err)
	}
	return body, err
}

func (c *Client) fetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := uint(c.maxRetries) + 1
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return c.retryDelay(n)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			if n+1 >= attempts {
				return
			}
			metrics.TMDBRetries.Inc()
			c.logger.Debug("retrying tmdb request",
				logging.String(logging.FieldEventType, "tmdb_retry"),
				logging.Int("attempt", int(n)+1),
				logging.Duration("delay", c.retryDelay(n+1)),
				logging.Error(err),
			)
		}),
	}
	if c.timer != nil {
		opts = append(opts, retry.WithTimer(c.timer))
	}

	body, err := retry.DoWithData(func() ([]byte, error) {
		return c.attempt(ctx, rawURL)
	}, opts...)
	if err == nil {
		return body, nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && !statusErr.Retryable() {
		if statusErr.StatusCode == http.StatusNotFound {
			return nil, services.ExternalStatus("resource not found", http.StatusNotFound, statusErr)
		}
		ext := services.ExternalStatus("tmdb request rejected", statusErr.StatusCode, statusErr)
		ext.RetryAfter = statusErr.RetryAfter
		return nil, ext
	}
	return nil, err
}

// retryDelay is the wait before retry k (1-based): baseDelay * 2^(k-1).
// retry-go counts attempts before asking for the delay, so k starts at 1.
func (c *Client) retryDelay(k uint) time.Duration {
	if k == 0 {
		return c.baseDelay
	}
	return c.baseDelay << (k - 1)
}

func (c *Client) attempt(ctx context.Context, rawURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tmdb rate limiter: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.settings.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.settings.APIToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		metrics.RecordTMDBAttempt(metrics.OutcomeNetwork, latency)
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.RecordTMDBAttempt(metrics.OutcomeNetwork, latency)
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordTMDBAttempt(outcomeForStatus(resp.StatusCode), latency)
		return nil, newStatusError(resp, body, c.now())
	}
	metrics.RecordTMDBAttempt(metrics.OutcomeSuccess, latency)
	return body, nil
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Retryable()
}

func outcomeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return metrics.OutcomeNotFound
	case status >= http.StatusInternalServerError:
		return metrics.OutcomeServerError
	default:
		return metrics.OutcomeClientError
	}
}
