package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// probePrefixBytes is how much of the source a probe reads to warm the
// transport path and validate the locator.
const probePrefixBytes = 256 << 10

// ProbeDriver is the reference Driver: it validates that a source URI
// is reachable and pre-reads a prefix of the media bytes, then models
// transport state in memory. Real decoding belongs to the presentation
// layer's driver; this one keeps the module self-contained for headless
// runs and integration tests.
type ProbeDriver struct {
	client *http.Client
}

// NewProbeDriver creates a probe driver with the given per-open timeout.
func NewProbeDriver(timeout time.Duration) *ProbeDriver {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProbeDriver{client: &http.Client{Timeout: timeout}}
}

// Open fetches up to probePrefixBytes from uri. A non-2xx status or
// transport failure fails the open.
func (d *ProbeDriver) Open(ctx context.Context, uri string) (Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("probe: build request: %w", err)
	}
	res, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe: fetch %s: %w", uri, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("probe: fetch %s: HTTP %d", uri, res.StatusCode)
	}

	n, err := io.Copy(io.Discard, io.LimitReader(res.Body, probePrefixBytes))
	if err != nil {
		return nil, fmt.Errorf("probe: read prefix of %s: %w", uri, err)
	}

	return &probeResource{prefix: n}, nil
}

// probeResource models transport state for a probed source.
type probeResource struct {
	mu       sync.Mutex
	prefix   int64
	playing  bool
	position int64 // abstract; only start matters
	finished func()
	closed   bool
}

func (r *probeResource) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("probe: resource closed")
	}
	r.playing = true
	return nil
}

func (r *probeResource) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
	return nil
}

func (r *probeResource) SeekStart() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = 0
	return nil
}

func (r *probeResource) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *probeResource) OnFinished(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = fn
}

func (r *probeResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
	r.closed = true
	r.finished = nil
	return nil
}
