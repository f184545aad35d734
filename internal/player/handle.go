package player

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is the per-id pool entry the presentation layer borrows for
// rendering. It carries the buffering/error display state; the
// underlying resource stays owned by the pool.
type Handle struct {
	id       int64
	instance string // unique per entry creation, for log correlation
	uri      string

	mu        sync.Mutex
	res       Resource
	buffering bool
	err       error
	wantPlay  bool
	detached  bool // evicted; a still-pending open must discard its result
}

func newHandle(id int64, uri string) *Handle {
	return &Handle{
		id:        id,
		instance:  uuid.New().String(),
		uri:       uri,
		buffering: true,
	}
}

// ID returns the video id this handle is bound to.
func (h *Handle) ID() int64 { return h.id }

// Instance returns the unique id of this entry creation. A release
// followed by a re-acquire yields a different instance.
func (h *Handle) Instance() string { return h.instance }

// SourceURI returns the attached media locator.
func (h *Handle) SourceURI() string { return h.uri }

// Buffering reports the display flag: true until the source has opened
// and buffered enough to play.
func (h *Handle) Buffering() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.buffering
}

// Err returns the open failure, if any. An errored handle stays
// resident until evicted; sibling entries are unaffected.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Ready reports whether the resource is open and playable.
func (h *Handle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.res != nil && h.err == nil && h.res.Ready()
}

// play starts (or schedules, while still opening) playback from the top.
func (h *Handle) play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wantPlay = true
	if h.res == nil || h.err != nil {
		return // open completion honors wantPlay
	}
	_ = h.res.SeekStart()
	_ = h.res.Play()
}

func (h *Handle) pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wantPlay = false
	if h.res != nil {
		_ = h.res.Pause()
	}
}

// detach marks the handle evicted and tears down its resource. A
// pending open for this handle discards its result on completion.
func (h *Handle) detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detached = true
	h.wantPlay = false
	if h.res != nil {
		h.res.OnFinished(nil)
		_ = h.res.Pause()
		_ = h.res.Close()
		h.res = nil
	}
}

// refreshBuffering flips the display flag once the resource reports
// ready. Called by the optional coordinator poll.
func (h *Handle) refreshBuffering() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buffering && h.res != nil && h.res.Ready() {
		h.buffering = false
	}
}

// completeOpen applies the driver's open result. Returns false when the
// handle was detached while opening and the resource must be discarded.
func (h *Handle) completeOpen(res Resource, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detached {
		return false
	}
	if err != nil {
		h.err = err
		h.buffering = false
		return true
	}
	h.res = res
	h.buffering = !res.Ready()
	// Seamless looping: on end-of-media, seek to start and resume.
	// Armed here so a recreated resource is always re-armed.
	res.OnFinished(func() {
		_ = res.SeekStart()
		_ = res.Play()
	})
	if h.wantPlay {
		_ = res.SeekStart()
		_ = res.Play()
	}
	return true
}
