package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/everstacklabs/modelsync/internal/cache"
)

// Client is an HTTP client with rate limiting and optional file-backed
// response caching with conditional revalidation.
type Client struct {
	http    *http.Client
	cache   *cache.FileCache
	limiter *rate.Limiter
	noCache bool
}

// Option configures the Client.
type Option func(*Client)

// WithCache enables file-based response caching.
func WithCache(c *cache.FileCache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithRateLimit sets the allowed requests per second.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithNoCache bypasses the cache even when one is configured.
func WithNoCache() Option {
	return func(cl *Client) { cl.noCache = true }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http.Timeout = d }
}

// New creates a new HTTP client.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response wraps an HTTP response body and metadata.
type Response struct {
	Body       []byte
	StatusCode int
	FromCache  bool
}

// Get performs a single HTTP GET. A fresh cache entry short-circuits the
// request; a stale one is revalidated with If-None-Match / If-Modified-Since.
// There are no retries: a transport failure or a >=400 status is returned
// to the caller as an error naming the URL.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var stale *cache.Entry
	if c.cache != nil && !c.noCache {
		entry, fresh := c.cache.Get(url)
		if fresh {
			return &Response{Body: entry.Body, StatusCode: entry.StatusCode, FromCache: true}, nil
		}
		stale = entry
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if stale != nil {
		if stale.ETag != "" {
			req.Header.Set("If-None-Match", stale.ETag)
		}
		if stale.LastMod != "" {
			req.Header.Set("If-Modified-Since", stale.LastMod)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	// Not modified: refresh the cache TTL and reuse the stale body.
	if resp.StatusCode == http.StatusNotModified && stale != nil {
		if c.cache != nil {
			_ = c.cache.Set(url, stale)
		}
		return &Response{Body: stale.Body, StatusCode: stale.StatusCode, FromCache: true}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP GET %s: status %d: %s", url, resp.StatusCode, string(body))
	}

	if c.cache != nil && !c.noCache {
		_ = c.cache.Set(url, &cache.Entry{
			Body:       body,
			ETag:       resp.Header.Get("ETag"),
			LastMod:    resp.Header.Get("Last-Modified"),
			StatusCode: resp.StatusCode,
		})
	}

	return &Response{Body: body, StatusCode: resp.StatusCode}, nil
}
