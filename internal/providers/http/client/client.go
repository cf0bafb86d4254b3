package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/resilience"
)

// maxTrackedHosts bounds the per-host limiter map; when exceeded the map is
// reset rather than evicted piecemeal
const maxTrackedHosts = 1024

// Config defines client behavior
type Config struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	PerHostRPS   float64
	PerHostBurst int
	UserAgent    string
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 30 * time.Second,
		PerHostRPS:   4,
		PerHostBurst: 8,
		UserAgent:    "MarinaShell/1.0",
	}
}

// Client wraps resty with per-host rate limiting and a circuit breaker
type Client struct {
	resty   *resty.Client
	breaker *resilience.Breaker
	cfg     Config

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// New creates a production-ready HTTP client
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg = DefaultConfig()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil // Disable logging

	restyClient := resty.New()
	restyClient.
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	// Retries live in the transport so a single layer governs them
	restyClient.SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	breaker := resilience.New("http-external", resilience.Config{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		// Lenient: favicon hosts vary wildly in reliability
		TripAfter: 10,
	})

	return &Client{
		resty:   restyClient,
		breaker: breaker,
		cfg:     cfg,
		hosts:   make(map[string]*rate.Limiter),
	}
}

// limiter returns the rate limiter for a host, creating it on first use
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lim, ok := c.hosts[host]; ok {
		return lim
	}

	if len(c.hosts) >= maxTrackedHosts {
		c.hosts = make(map[string]*rate.Limiter)
	}

	var lim *rate.Limiter
	if c.cfg.PerHostRPS <= 0 {
		lim = rate.NewLimiter(rate.Inf, 0)
	} else {
		lim = rate.NewLimiter(rate.Limit(c.cfg.PerHostRPS), c.cfg.PerHostBurst)
	}
	c.hosts[host] = lim
	return lim
}

type fetched struct {
	body        []byte
	contentType string
}

// Get fetches a URL with rate limiting, retries, and breaker protection,
// reading at most maxBytes of the response body
func (c *Client) Get(ctx context.Context, rawURL string, maxBytes int64) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("parse url: %w", err)
	}

	if c.breaker.State() == resilience.StateOpen {
		return nil, "", resilience.ErrCircuitOpen
	}

	if err := c.limiter(u.Hostname()).Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetDoNotParseResponse(true).
			Get(rawURL)
		if err != nil {
			return nil, err
		}

		raw := resp.RawBody()
		defer raw.Close()

		if resp.StatusCode() >= 400 {
			return nil, fmt.Errorf("http status %d", resp.StatusCode())
		}

		body, err := io.ReadAll(io.LimitReader(raw, maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if int64(len(body)) > maxBytes {
			return nil, fmt.Errorf("body exceeds %d bytes", maxBytes)
		}

		return fetched{body: body, contentType: resp.Header().Get("Content-Type")}, nil
	})
	if err != nil {
		return nil, "", err
	}

	f := result.(fetched)
	return f.body, f.contentType, nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// BreakerCounts returns circuit breaker statistics
func (c *Client) BreakerCounts() resilience.Counts {
	return c.breaker.Counts()
}
