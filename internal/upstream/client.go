// Package upstream issues GET requests to third-party movie metadata
// providers and decodes their JSON responses.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"golang.org/x/time/rate"

	"github.com/marco/movieFetcher/internal/retry"
	"github.com/marco/movieFetcher/internal/upstream/cache"
)

// ErrUpstream is wrapped by every error returned from Client.GetJSON.
var ErrUpstream = errors.New("upstream request failed")

// maxErrorBody bounds how much of a non-2xx body is kept on StatusError.
const maxErrorBody = 512

// StatusError reports a non-2xx response from a provider.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// StatusCode returns the HTTP status of the failed response.
func (e *StatusError) StatusCode() int {
	return e.Status
}

// Options configures a Client.
type Options struct {
	// Provider names the upstream in logs and cache keys.
	Provider string

	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	RateLimitRPS   float64

	Cache    cache.Cache
	CacheTTL time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a JSON-over-HTTP GET client for a single provider.
type Client struct {
	provider       string
	httpClient     *http.Client
	maxAttempts    int
	initialBackoff time.Duration
	limiter        *rate.Limiter
	cache          cache.Cache
	cacheTTL       time.Duration
	logger         *slog.Logger
}

// New creates a Client. Zero MaxAttempts means a single attempt, and zero
// RateLimitRPS disables rate limiting.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	return &Client{
		provider:       opts.Provider,
		httpClient:     httpClient,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
		limiter:        limiter,
		cache:          opts.Cache,
		cacheTTL:       opts.CacheTTL,
		logger:         opts.Logger.With("provider", opts.Provider),
	}
}

// GetJSON issues a GET to endpoint with params merged into its query string
// and decodes the response body into target.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, target any) error {
	requestURL, safeURL, err := buildURL(endpoint, params)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if body, ok := c.getFromCache(safeURL); ok {
		err := decodeFresh(body, target)
		if err == nil {
			return nil
		}
		c.logger.Warn("discarding undecodable cache entry", "url", safeURL, "error", err)
	}

	body, err := c.fetch(ctx, requestURL, safeURL)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrUpstream, safeURL, err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: GET %s: failed to decode response: %w", ErrUpstream, safeURL, err)
	}

	c.setToCache(safeURL, body)
	return nil
}

// fetch performs the request with rate limiting and retry and returns the raw body.
func (c *Client) fetch(ctx context.Context, requestURL, safeURL string) ([]byte, error) {
	var body []byte

	onRetry := func(attempt, maxAttempts int, backoff time.Duration, err error) {
		c.logger.Warn("upstream request failed, retrying",
			"url", safeURL,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"backoff_ms", backoff.Milliseconds(),
			"error", err,
		)
	}

	err := retry.Do(ctx, c.maxAttempts, c.initialBackoff, onRetry, func(ctx context.Context) error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		start := time.Now()
		b, status, err := c.do(ctx, requestURL)
		c.logger.Debug("upstream request",
			"url", safeURL,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		if err != nil {
			return err
		}
		body = b
		return nil
	})

	return body, err
}

func (c *Client) do(ctx context.Context, requestURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The transport error embeds the full URL, key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, resp.StatusCode, &StatusError{Status: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// decodeFresh decodes data into a new value of target's type and only
// copies it into target on success, so a failed decode leaves target as it was.
func decodeFresh(data []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return json.Unmarshal(data, target)
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

func (c *Client) getFromCache(key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, found := c.cache.Get(key)
	c.logger.Debug("upstream cache lookup", "url", key, "hit", found)
	return data, found
}

func (c *Client) setToCache(key string, data []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(key, data, c.cacheTTL); err != nil {
		c.logger.Warn("failed to store upstream response in cache", "url", key, "error", err)
	}
}
