package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/reelfeed/reelfeed/internal/feed"
	xlog "github.com/reelfeed/reelfeed/internal/log"
	"github.com/reelfeed/reelfeed/internal/metrics"
)

// Config holds the static client parameters.
type Config struct {
	BaseURL string
	APIKey  string

	// RequestTimeout bounds a single HTTP exchange; ResourceTimeout is
	// the end-to-end deadline including limiter wait time.
	RequestTimeout  time.Duration
	ResourceTimeout time.Duration

	// RateLimit throttles outgoing requests (req/s); 0 disables it.
	RateLimit float64
	RateBurst int
}

// Client issues paged search requests against the remote catalog.
type Client struct {
	base            string
	key             string
	http            *http.Client
	limiter         *rate.Limiter
	resourceTimeout time.Duration
	log             zerolog.Logger
}

// NewClient creates a catalog client. Zero timeouts fall back to the
// reference values (30s request, 60s resource).
func NewClient(cfg Config) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ResourceTimeout <= 0 {
		cfg.ResourceTimeout = 60 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		base:            strings.TrimRight(cfg.BaseURL, "/"),
		key:             cfg.APIKey,
		http:            &http.Client{Timeout: cfg.RequestTimeout},
		limiter:         rate.NewLimiter(limit, burst),
		resourceTimeout: cfg.ResourceTimeout,
		log:             xlog.WithComponent("catalog"),
	}
}

// SearchVideos fetches one page of search results and converts it to
// domain records. Failures wrap one of the package sentinels; the
// caller decides whether to retry.
func (c *Client) SearchVideos(ctx context.Context, query string, page, perPage int) ([]feed.VideoRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.resourceTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.search(ctx, query, page, perPage)
	if err != nil {
		metrics.ObserveCatalogRequest(outcome(err), time.Since(start))
		return nil, err
	}
	metrics.ObserveCatalogRequest("ok", time.Since(start))

	records := ToRecords(resp.Videos)
	c.log.Debug().
		Str(xlog.FieldQuery, query).
		Int(xlog.FieldPage, page).
		Int("videos", len(resp.Videos)).
		Int("records", len(records)).
		Int("total_results", resp.TotalResults).
		Msg("search page fetched")
	return records, nil
}

// Search returns the raw wire response for one page.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) (*SearchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.resourceTimeout)
	defer cancel()
	return c.search(ctx, query, page, perPage)
}

func (c *Client) search(ctx context.Context, query string, page, perPage int) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &Error{Sentinel: ErrTimeout, Operation: "search", Err: err}
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	u := c.base + "/videos/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Sentinel: ErrUnavailable, Operation: "search", Err: err}
	}
	req.Header.Set("Authorization", c.key)

	res, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &Error{Sentinel: ErrTimeout, Operation: "search", Err: err}
		}
		return nil, &Error{Sentinel: ErrUnavailable, Operation: "search", Err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &Error{Sentinel: ErrBadStatus, Operation: "search", Status: res.StatusCode}
	}

	var payload SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: "search", Err: err}
	}
	return &payload, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBadStatus):
		return "bad_status"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	default:
		return "unavailable"
	}
}
