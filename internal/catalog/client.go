package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Client fetches category listings from the remote catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*Page]
}

// BreakerSettings controls when the client stops calling a failing catalog.
type BreakerSettings struct {
	MaxFailures uint32        // Consecutive failures before opening (0 disables)
	OpenTimeout time.Duration // Time spent open before a trial request
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "catalog")
	}
}

// WithRateLimit paces requests to rps with the given burst. rps <= 0 disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker wraps requests in a circuit breaker.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		if s.MaxFailures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = newBreaker(s, c)
	}
}

// New creates a catalog client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.Default().With("component", "catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(s BreakerSettings, c *Client) *gobreaker.CircuitBreaker[*Page] {
	return gobreaker.NewCircuitBreaker[*Page](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about catalog health.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrUnknownCategory)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// FetchPage fetches one page of a category listing.
// Every failure wraps ErrRemoteUnavailable except an unknown category.
func (c *Client) FetchPage(ctx context.Context, category Category, page int) (*Page, error) {
	endpoint, err := category.endpoint()
	if err != nil {
		return nil, err
	}

	if c.breaker == nil {
		return c.fetch(ctx, category, endpoint, page)
	}
	p, err := c.breaker.Execute(func() (*Page, error) {
		return c.fetch(ctx, category, endpoint, page)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s page %d: %v", ErrRemoteUnavailable, category, page, err)
	}
	return p, err
}

func (c *Client) fetch(ctx context.Context, category Category, endpoint string, page int) (*Page, error) {
	start := time.Now()
	c.log.Info("fetching page", "category", category, "page", page)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: wait for rate limit: %w", ErrRemoteUnavailable, err)
		}
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	u := fmt.Sprintf("%s/api/%s.json?%s", c.baseURL, endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s page %d: %w", ErrRemoteUnavailable, category, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch %s page %d: %s", ErrRemoteUnavailable, category, page, resp.Status)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode %s page %d: %w", ErrRemoteUnavailable, category, page, err)
	}
	if body.TotalResults == nil {
		return nil, fmt.Errorf("%w: %s page %d: response missing total_results", ErrRemoteUnavailable, category, page)
	}

	p := &Page{
		Category:     category,
		Number:       page,
		Items:        make([]Item, 0, len(body.Results)),
		TotalResults: *body.TotalResults,
	}
	for _, r := range body.Results {
		p.Items = append(p.Items, r.item(category))
	}

	c.log.Debug("fetched page",
		"category", category,
		"page", page,
		"results", len(p.Items),
		"total_results", p.TotalResults,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return p, nil
}
