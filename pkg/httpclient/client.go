package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ClientType represents the header profile used for outgoing requests
type ClientType string

const (
	// BrowserClient uses browser-like headers to avoid 406 (Not Acceptable) errors
	// vie-publique.fr answers 406 to Go's default User-Agent, so this is the crawl default
	BrowserClient ClientType = "browser"

	// DefaultClient uses Go's default headers
	// Used for plain hosts and test servers
	DefaultClient ClientType = "default"
)

// Defaults applied by NewClient for zero Config fields.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRequestDelay = 200 * time.Millisecond
)

// Config controls timeout and politeness behavior of the client
type Config struct {
	ClientType ClientType

	// Timeout bounds each request end to end (connect, redirect, body read)
	Timeout time.Duration

	// RequestDelay is the politeness delay between successive requests.
	// Zero means the default; a negative value disables the delay.
	RequestDelay time.Duration
}

// HTTPClient wraps an http.Client with a header profile and a shared
// politeness limiter
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	limiter    *rate.Limiter
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = DefaultRequestDelay
	}

	// One token per delay period, burst 1, shared by every worker using this
	// client: the request rate stays the same no matter the worker count
	var limiter *rate.Limiter
	if cfg.RequestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: cfg.ClientType,
		limiter:    limiter,
	}
}

// Do executes an HTTP request with the appropriate headers for the client type,
// waiting for the politeness limiter first
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("politeness wait interrupted: %w", err)
		}
	}
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		// Browser-like headers to avoid 406 (Not Acceptable) errors
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.8")
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	default:
		// Default: use Go's default User-Agent
	}
}
