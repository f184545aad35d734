package player

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	xlog "github.com/reelfeed/reelfeed/internal/log"
	"github.com/reelfeed/reelfeed/internal/metrics"
)

// DefaultMaxResident is the reference cap on concurrently live players.
const DefaultMaxResident = 3

// Pool maps video ids to live playback resources under a hard cap.
// Eviction keeps the window {justAcquired-1, justAcquired, justAcquired+1}
// and tears down everything else once the cap is exceeded; the feed's
// scroll locality makes those neighbors the highest-value residents.
type Pool struct {
	driver      Driver
	maxResident int
	log         zerolog.Logger

	mu         sync.Mutex
	entries    map[int64]*Handle
	current    int64
	hasCurrent bool
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool creates a pool over the given driver. maxResident <= 0 falls
// back to DefaultMaxResident.
func NewPool(driver Driver, maxResident int) *Pool {
	if maxResident <= 0 {
		maxResident = DefaultMaxResident
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		driver:      driver,
		maxResident: maxResident,
		log:         xlog.WithComponent("player"),
		entries:     make(map[int64]*Handle),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Acquire returns the resident handle for id, creating one if absent.
// Creation registers the entry immediately (so a following Play sees it
// resident), opens the source asynchronously and then runs eviction.
// Repeated acquires for a resident id return the same handle without
// reconnecting the source. Open failures land on the handle's error
// state, never as a synchronous error here.
func (p *Pool) Acquire(id int64, uri string) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPoolClosed
	}
	if h, ok := p.entries[id]; ok {
		metrics.IncPoolAcquire("reused")
		return h, nil
	}
	h := p.registerLocked(id, uri)
	metrics.IncPoolAcquire("created")
	p.evictLocked(id)
	return h, nil
}

// Preload warms a resident entry for id without playing it. Skipped if
// the id is already resident. The opened resource is discarded if the
// entry is evicted or the pool closed before the open completes.
func (p *Pool) Preload(id int64, uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if _, ok := p.entries[id]; ok {
		metrics.IncPoolPreload("resident")
		return
	}
	p.registerLocked(id, uri)
	metrics.IncPoolPreload("started")
	p.evictLocked(id)
}

// Play starts playback of id from the top, pausing whatever was playing.
// The id must be resident; otherwise ErrNotResident is returned and no
// other entry is disturbed.
func (p *Pool) Play(id int64) error {
	p.mu.Lock()
	h, ok := p.entries[id]
	if !ok {
		p.mu.Unlock()
		metrics.PoolPreconditionsTotal.Inc()
		p.log.Warn().Int64(xlog.FieldVideoID, id).Msg("play for non-resident id")
		return ErrNotResident
	}
	if p.hasCurrent && p.current != id {
		if prev, ok := p.entries[p.current]; ok {
			prev.pause()
		}
	}
	p.current = id
	p.hasCurrent = true
	p.mu.Unlock()

	h.play()
	return nil
}

// Pause pauses id's entry; clears current-playing if it was current.
// Pausing a non-resident id is a no-op.
func (p *Pool) Pause(id int64) {
	p.mu.Lock()
	h, ok := p.entries[id]
	if ok && p.hasCurrent && p.current == id {
		p.hasCurrent = false
	}
	p.mu.Unlock()
	if ok {
		h.pause()
	}
}

// PauseAll pauses every resident entry and clears current-playing.
func (p *Pool) PauseAll() {
	p.mu.Lock()
	handles := make([]*Handle, 0, len(p.entries))
	for _, h := range p.entries {
		handles = append(handles, h)
	}
	p.hasCurrent = false
	p.mu.Unlock()
	for _, h := range handles {
		h.pause()
	}
}

// Release evicts one entry regardless of the retention window.
func (p *Pool) Release(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evictEntryLocked(id, "release")
}

// ReleaseAll evicts every entry. Used on teardown (app background,
// navigation away from the feed).
func (p *Pool) ReleaseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.entries {
		p.evictEntryLocked(id, "release_all")
	}
}

// Close releases everything, cancels pending opens and waits for them.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for id := range p.entries {
		p.evictEntryLocked(id, "release_all")
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// CurrentlyPlaying returns the id recorded as playing, if any.
func (p *Pool) CurrentlyPlaying() (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.hasCurrent
}

// Resident reports whether id has a live entry.
func (p *Pool) Resident(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.entries[id]
	return ok
}

// Residents returns the resident ids in ascending order.
func (p *Pool) Residents() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]int64, 0, len(p.entries))
	for id := range p.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RefreshBuffering re-checks readiness of every resident entry and
// flips buffering display flags. Driven by the coordinator's optional
// poll; never a transport decision.
func (p *Pool) RefreshBuffering() {
	p.mu.Lock()
	handles := make([]*Handle, 0, len(p.entries))
	for _, h := range p.entries {
		handles = append(handles, h)
	}
	p.mu.Unlock()
	for _, h := range handles {
		h.refreshBuffering()
	}
}

// registerLocked creates the entry and starts the async source open.
func (p *Pool) registerLocked(id int64, uri string) *Handle {
	h := newHandle(id, uri)
	p.entries[id] = h
	metrics.SetPoolResident(len(p.entries))
	p.log.Debug().
		Int64(xlog.FieldVideoID, id).
		Str(xlog.FieldHandleID, h.instance).
		Msg("player created")

	p.wg.Add(1)
	go p.open(h)
	return h
}

func (p *Pool) open(h *Handle) {
	defer p.wg.Done()
	res, err := p.driver.Open(p.ctx, h.uri)
	if !h.completeOpen(res, err) {
		// Entry was evicted while opening; drop the stale result.
		if err == nil {
			_ = res.Close()
		}
		metrics.IncPoolPreload("discarded")
		return
	}
	if err != nil {
		metrics.PoolOpenFailuresTotal.Inc()
		p.log.Warn().Err(err).
			Int64(xlog.FieldVideoID, h.id).
			Str(xlog.FieldHandleID, h.instance).
			Msg("source open failed")
	}
}

// evictLocked enforces the cap after a registration: every resident id
// outside {around-1, around, around+1} is torn down.
func (p *Pool) evictLocked(around int64) {
	if len(p.entries) <= p.maxResident {
		return
	}
	for id := range p.entries {
		if id >= around-1 && id <= around+1 {
			continue
		}
		p.evictEntryLocked(id, "window")
	}
}

func (p *Pool) evictEntryLocked(id int64, reason string) {
	h, ok := p.entries[id]
	if !ok {
		return
	}
	delete(p.entries, id)
	if p.hasCurrent && p.current == id {
		p.hasCurrent = false
	}
	h.detach()
	metrics.IncPoolEviction(reason)
	metrics.SetPoolResident(len(p.entries))
	p.log.Debug().
		Int64(xlog.FieldVideoID, id).
		Str(xlog.FieldHandleID, h.instance).
		Str("reason", reason).
		Msg("player evicted")
}
