package statsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

const (
	StatsPath             = "/dashboard/stats"
	CategoryBreakdownPath = "/dashboard/category_breakdown"

	maxBodyBytes = 1 << 20
)

var (
	ErrFetchFailure     = errors.New("fetch failure")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Client reads dashboard summaries from the stats backend. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	observe func(endpoint, outcome string)
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver registers a callback invoked once per request with the
// endpoint path and one of "ok", "fetch_error" or "malformed".
func WithObserver(fn func(endpoint, outcome string)) Option {
	return func(c *Client) { c.observe = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    NewHTTPClient(15 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

func (c *Client) FetchStats(ctx context.Context) (*models.Overview, error) {
	body, err := c.get(ctx, StatsPath)
	if err != nil {
		return nil, err
	}

	var resp models.StatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.record(StatsPath, "malformed")
		return nil, fmt.Errorf("%w: error decoding stats: %v", ErrMalformedPayload, err)
	}
	if resp.Status != "success" {
		c.record(StatsPath, "malformed")
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %q", resp.Status)
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, msg)
	}
	if resp.Data == nil || resp.Data.Overview == nil {
		c.record(StatsPath, "malformed")
		return nil, fmt.Errorf("%w: missing data.overview", ErrMalformedPayload)
	}

	c.record(StatsPath, "ok")
	return resp.Data.Overview, nil
}

func (c *Client) FetchCategoryBreakdown(ctx context.Context) ([]models.CategorySlice, error) {
	body, err := c.get(ctx, CategoryBreakdownPath)
	if err != nil {
		return nil, err
	}

	var slices []models.CategorySlice
	if err := json.Unmarshal(body, &slices); err != nil {
		c.record(CategoryBreakdownPath, "malformed")
		return nil, fmt.Errorf("%w: error decoding category breakdown: %v", ErrMalformedPayload, err)
	}
	if slices == nil {
		c.record(CategoryBreakdownPath, "malformed")
		return nil, fmt.Errorf("%w: category breakdown is not an array", ErrMalformedPayload)
	}

	c.record(CategoryBreakdownPath, "ok")
	return slices, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.record(path, "fetch_error")
		return nil, fmt.Errorf("%w: error creating request: %v", ErrFetchFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(path, "fetch_error")
		return nil, fmt.Errorf("%w: GET %s: %w", ErrFetchFailure, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(path, "fetch_error")
		return nil, fmt.Errorf("%w: unexpected status code: %d - status: %s", ErrFetchFailure, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.record(path, "fetch_error")
		return nil, fmt.Errorf("%w: error reading body: %w", ErrFetchFailure, err)
	}
	return body, nil
}

func (c *Client) record(endpoint, outcome string) {
	if c.observe != nil {
		c.observe(endpoint, outcome)
	}
}
