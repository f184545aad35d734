// Package coordinator drives playback from scroll position: it decides
// which video plays, which neighbor gets pre-warmed and when the feed
// should extend itself. It owns no media state; the pool does.
package coordinator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/feed"
	xlog "github.com/reelfeed/reelfeed/internal/log"
	"github.com/reelfeed/reelfeed/internal/player"
)

// Feed is the scroll surface the coordinator reads positions from.
type Feed interface {
	RecordAt(index int) (feed.VideoRecord, bool)
	MaybeLoadMore(ctx context.Context, visibleIndex int) error
}

// Pool is the playback side the coordinator drives.
type Pool interface {
	Acquire(id int64, uri string) (*player.Handle, error)
	Preload(id int64, uri string)
	Play(id int64) error
	PauseAll()
	Release(id int64)
	RefreshBuffering()
}

// Config tunes the coordinator.
type Config struct {
	// BufferPoll, when positive, runs a background tick that refreshes
	// the pool's buffering display flags. Zero disables the poll.
	BufferPoll time.Duration
}

// Coordinator reacts to visibility events from the presentation layer.
type Coordinator struct {
	feed Feed
	pool Pool
	log  zerolog.Logger

	mu      sync.Mutex
	index   int
	hasPos  bool
	visible bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a coordinator over the given feed and pool. When
// cfg.BufferPoll is positive a background refresh loop starts
// immediately; Stop reaps it.
func New(f Feed, p Pool, cfg Config) *Coordinator {
	c := &Coordinator{
		feed:    f,
		pool:    p,
		log:     xlog.WithComponent("coordinator"),
		visible: true,
	}
	if cfg.BufferPoll > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.wg.Add(1)
		go c.pollBuffering(ctx, cfg.BufferPoll)
	}
	return c
}

// VisibleIndexChanged is the central scroll event: the record at index
// became the focused cell. It plays that record, pre-warms the next one
// and extends the feed when the tail is near.
func (c *Coordinator) VisibleIndexChanged(ctx context.Context, index int) error {
	rec, ok := c.feed.RecordAt(index)
	if !ok {
		c.log.Warn().Int(xlog.FieldIndex, index).Msg("visible index out of range")
		return nil
	}

	c.mu.Lock()
	c.index = index
	c.hasPos = true
	visible := c.visible
	c.mu.Unlock()

	if _, err := c.pool.Acquire(rec.ID, rec.SourceURI); err != nil {
		return err
	}
	if visible {
		if err := c.pool.Play(rec.ID); err != nil {
			return err
		}
	}

	if next, ok := c.feed.RecordAt(index + 1); ok {
		c.pool.Preload(next.ID, next.SourceURI)
	}

	return c.feed.MaybeLoadMore(ctx, index)
}

// TabHidden pauses everything; the remembered position resumes on
// TabShown.
func (c *Coordinator) TabHidden() {
	c.mu.Lock()
	c.visible = false
	c.mu.Unlock()
	c.pool.PauseAll()
	c.log.Debug().Msg("feed hidden, playback paused")
}

// TabShown resumes playback at the remembered position.
func (c *Coordinator) TabShown() {
	c.mu.Lock()
	c.visible = true
	index, ok := c.index, c.hasPos
	c.mu.Unlock()
	if !ok {
		return
	}
	rec, ok := c.feed.RecordAt(index)
	if !ok {
		return
	}
	if err := c.pool.Play(rec.ID); err != nil {
		c.log.Warn().Err(err).
			Int64(xlog.FieldVideoID, rec.ID).
			Msg("resume after show failed")
	}
}

// CellRemoved releases the player bound to a cell that left the screen
// for good (deleted from the list, not merely scrolled past).
func (c *Coordinator) CellRemoved(id int64) {
	c.pool.Release(id)
}

// Stop reaps the buffering poll, if one is running.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Coordinator) pollBuffering(ctx context.Context, every time.Duration) {
	defer c.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.pool.RefreshBuffering()
		}
	}
}
