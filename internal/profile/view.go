// Package profile derives the liked and bookmarked video grids shown on
// the profile screen. The grids are views over the session's record
// cache, keyed by the persisted flag sets; they refresh themselves when
// a flag changes anywhere in the app.
package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/feed"
	"github.com/reelfeed/reelfeed/internal/flagstore"
	xlog "github.com/reelfeed/reelfeed/internal/log"
)

// FlagStore is the read side of the persisted flag sets.
type FlagStore interface {
	AllMembers(set string) ([]int64, error)
	Subscribe(fn func(set string)) (cancel func())
}

// Catalog is the remote page source used to warm the grid cache.
type Catalog interface {
	SearchVideos(ctx context.Context, query string, page, perPage int) ([]feed.VideoRecord, error)
}

// View holds the two derived grids.
type View struct {
	store FlagStore
	cache *feed.RecordCache
	log   zerolog.Logger

	mu      sync.Mutex
	liked   []feed.VideoRecord
	saved   []feed.VideoRecord
	lastErr error
	loading bool

	unsubscribe func()
}

// NewView creates the profile view and subscribes it to flag changes.
// Call Close when the view goes away.
func NewView(store FlagStore, cache *feed.RecordCache) *View {
	v := &View{
		store: store,
		cache: cache,
		log:   xlog.WithComponent("profile"),
	}
	v.unsubscribe = store.Subscribe(func(set string) {
		if err := v.Reload(); err != nil {
			v.log.Warn().Err(err).Str(xlog.FieldSet, set).Msg("grid refresh failed")
		}
	})
	return v
}

// Close detaches the flag-change subscription.
func (v *View) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

// LoadGrid fetches one catalog page into the record cache so flagged
// ids can resolve to records, then recomputes the grids. No-op while
// another load is in flight.
func (v *View) LoadGrid(ctx context.Context, cat Catalog, query string, perPage int) error {
	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	v.mu.Unlock()

	recs, err := cat.SearchVideos(ctx, query, 1, perPage)

	v.mu.Lock()
	v.loading = false
	v.mu.Unlock()
	if err != nil {
		v.setErr(err)
		return fmt.Errorf("profile: load grid: %w", err)
	}
	v.cache.PutAll(recs)
	return v.Reload()
}

// Reload recomputes both grids from the flag store and the record
// cache. Ids without a cached record are skipped; they reappear once
// the feed sees them again.
func (v *View) Reload() error {
	likedIDs, err := v.store.AllMembers(flagstore.SetLiked)
	if err != nil {
		v.setErr(err)
		return err
	}
	savedIDs, err := v.store.AllMembers(flagstore.SetBookmarked)
	if err != nil {
		v.setErr(err)
		return err
	}

	liked := v.cache.ForIDs(likedIDs)
	saved := v.cache.ForIDs(savedIDs)
	for i := range liked {
		liked[i].Liked = true
	}
	for i := range saved {
		saved[i].Bookmarked = true
	}

	v.mu.Lock()
	v.liked = liked
	v.saved = saved
	v.lastErr = nil
	v.mu.Unlock()
	return nil
}

// LikedVideos returns the liked grid, most recently liked first.
func (v *View) LikedVideos() []feed.VideoRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]feed.VideoRecord, len(v.liked))
	copy(out, v.liked)
	return out
}

// SavedVideos returns the bookmarked grid.
func (v *View) SavedVideos() []feed.VideoRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]feed.VideoRecord, len(v.saved))
	copy(out, v.saved)
	return out
}

// Err returns the last reload failure, cleared on success.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr
}

// NeedsRetry reports whether the screen should offer a retry control:
// both grids empty with a reload failure pending.
func (v *View) NeedsRetry() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastErr != nil && len(v.liked) == 0 && len(v.saved) == 0
}

func (v *View) setErr(err error) {
	v.mu.Lock()
	v.lastErr = err
	v.mu.Unlock()
}
