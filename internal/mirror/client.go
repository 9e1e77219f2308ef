// Package mirror provides a client for the destination store that mirrors the catalog.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vmunix/synctower/internal/catalog"
)

// Counts is a snapshot of how many items the mirror holds per category.
type Counts struct {
	Movies int `json:"movies"`
	Shows  int `json:"shows"`
}

// For returns the count for a category.
func (c Counts) For(category catalog.Category) int {
	if category == catalog.Show {
		return c.Shows
	}
	return c.Movies
}

// countsResponse distinguishes an explicit zero from a missing field.
type countsResponse struct {
	Movies *int `json:"movies"`
	Shows  *int `json:"shows"`
}

// Client talks to the mirror store API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	payloads   map[catalog.Category]payloadFunc
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
		c.log = log.With("component", "mirror")
	}
}

// New creates a mirror client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:      slog.Default().With("component", "mirror"),
		payloads: make(map[catalog.Category]payloadFunc, len(catalog.Categories)),
	}
	for _, cat := range catalog.Categories {
		fn, err := payloadFor(cat)
		if err != nil {
			panic(err) // every entry of catalog.Categories has a mapping
		}
		c.payloads[cat] = fn
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadCounts fetches the per-category item counts.
// A missing field is an error, never a silent zero.
func (c *Client) ReadCounts(ctx context.Context) (*Counts, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/dbdata.json", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrMirrorUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: read counts: %w", ErrMirrorUnavailable, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, fmt.Errorf("%w: read counts: %s", ErrMirrorUnavailable, resp.Status)
	}

	var body countsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode counts: %w", ErrMirrorUnavailable, err)
	}
	if body.Movies == nil || body.Shows == nil {
		return nil, fmt.Errorf("%w: counts document missing movies or shows", ErrMirrorUnavailable)
	}

	counts := &Counts{Movies: *body.Movies, Shows: *body.Shows}
	c.log.Debug("read counts", "movies", counts.Movies, "shows", counts.Shows)
	return counts, nil
}

// FilterExisting posts candidate ids and returns the ids the mirror wants synced.
func (c *Client) FilterExisting(ctx context.Context, category catalog.Category, ids []int64) ([]int64, error) {
	if _, ok := c.payloads[category]; !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, string(category))
	}
	if ids == nil {
		ids = []int64{}
	}

	q := url.Values{}
	q.Set("checkon", string(category))
	resp, err := c.postJSON(ctx, "/api/checkids.json?"+q.Encode(), ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExistenceCheckFailed, category, err)
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		return nil, fmt.Errorf("%w: %s: %s", ErrExistenceCheckFailed, category, resp.Status)
	}

	var toSync []int64
	if err := json.NewDecoder(resp.Body).Decode(&toSync); err != nil {
		return nil, fmt.Errorf("%w: decode %s ids: %w", ErrExistenceCheckFailed, category, err)
	}

	c.log.Debug("checked ids", "category", category, "candidates", len(ids), "to_sync", len(toSync))
	return toSync, nil
}

// Append inserts one item into the mirror.
func (c *Client) Append(ctx context.Context, category catalog.Category, item catalog.Item) error {
	mapping, ok := c.payloads[category]
	if !ok {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, string(category))
	}

	q := url.Values{}
	q.Set("insert", string(category))
	resp, err := c.postJSON(ctx, "/api/dbdata.json?"+q.Encode(), mapping(item))
	if err != nil {
		return fmt.Errorf("%w: %s %d: %w", ErrItemSyncFailed, category, item.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !success(resp.StatusCode) {
		return fmt.Errorf("%w: %s %d: %s", ErrItemSyncFailed, category, item.ID, resp.Status)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, v any) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func success(status int) bool {
	return status >= 200 && status <= 299
}
