package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	xlog "github.com/reelfeed/reelfeed/internal/log"
	"github.com/reelfeed/reelfeed/internal/metrics"
)

// LookaheadThreshold is the number of trailing items that triggers the
// next page load: a visible index within the last three items fires
// MaybeLoadMore. Tunable constant, not derived.
const LookaheadThreshold = 3

// Flag set names understood by the sequence.
const (
	SetLiked      = "liked"
	SetBookmarked = "bookmarked"
)

// State is a snapshot of the sequence's pagination bookkeeping.
type State struct {
	Len         int
	CurrentPage int
	HasMore     bool
	Loading     bool
	Err         error // last page-load error, cleared on success
}

// Sequence is the append-only list of records the user scrolls through.
// All mutation happens under one mutex; the catalog fetch itself runs
// outside the lock and its result is applied atomically, guarded by an
// epoch counter so completions superseded by a refresh are discarded.
type Sequence struct {
	catalog Catalog
	flags   FlagSource   // optional
	cache   *RecordCache // optional
	query   string
	perPage int
	log     zerolog.Logger

	mu      sync.Mutex
	records []VideoRecord
	page    int
	hasMore bool
	loading bool
	lastErr error
	epoch   uint64
}

// NewSequence creates a sequence over the given catalog. flags and cache
// may be nil; when present, fetched records are flag-synced and cached
// for cross-screen views.
func NewSequence(catalog Catalog, flags FlagSource, cache *RecordCache, query string, perPage int) *Sequence {
	return &Sequence{
		catalog: catalog,
		flags:   flags,
		cache:   cache,
		query:   query,
		perPage: perPage,
		log:     xlog.WithComponent("feed"),
		page:    1,
		hasMore: true,
	}
}

// LoadFirstPage fetches page 1 and replaces the sequence contents.
// It is a no-op while another fetch is in flight. On failure the
// previous records are kept (stale-over-blank).
func (s *Sequence) LoadFirstPage(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.page = 1
	epoch := s.epoch
	s.mu.Unlock()

	records, err := s.catalog.SearchVideos(ctx, s.query, 1, s.perPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		metrics.IncFeedPage("stale")
		s.log.Debug().Int(xlog.FieldPage, 1).Msg("discarding stale first-page result")
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err
		metrics.IncFeedPage("failed")
		return fmt.Errorf("feed: load first page: %w", err)
	}
	s.syncFlags(records)
	s.records = records
	s.hasMore = len(records) > 0
	s.lastErr = nil
	if s.cache != nil {
		s.cache.PutAll(records)
	}
	metrics.IncFeedPage("applied")
	s.log.Info().Int(xlog.FieldPage, 1).Int("count", len(records)).Msg("first page loaded")
	return nil
}

// MaybeLoadMore fires LoadNextPage when the visible index has entered
// the lookahead window at the tail of the sequence.
func (s *Sequence) MaybeLoadMore(ctx context.Context, visibleIndex int) error {
	s.mu.Lock()
	trigger := visibleIndex >= len(s.records)-LookaheadThreshold && s.hasMore && !s.loading
	s.mu.Unlock()
	if !trigger {
		return nil
	}
	s.log.Debug().Int(xlog.FieldIndex, visibleIndex).Msg("near tail, loading more")
	return s.LoadNextPage(ctx)
}

// LoadNextPage fetches the page after the current one and appends the
// result. The page counter is incremented before the fetch and rolled
// back on failure so a retry targets the same page number.
func (s *Sequence) LoadNextPage(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.page++
	page := s.page
	epoch := s.epoch
	s.mu.Unlock()

	records, err := s.catalog.SearchVideos(ctx, s.query, page, s.perPage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		metrics.IncFeedPage("stale")
		s.log.Debug().Int(xlog.FieldPage, page).Msg("discarding stale page result")
		return nil
	}
	s.loading = false
	if err != nil {
		s.page-- // retry hits the same page
		s.lastErr = err
		metrics.IncFeedPage("failed")
		return fmt.Errorf("feed: load page %d: %w", page, err)
	}
	s.lastErr = nil
	if len(records) == 0 {
		s.hasMore = false
		metrics.IncFeedPage("empty")
		s.log.Info().Int(xlog.FieldPage, page).Msg("catalog exhausted")
		return nil
	}
	s.syncFlags(records)
	s.records = append(s.records, records...)
	if s.cache != nil {
		s.cache.PutAll(records)
	}
	metrics.IncFeedPage("applied")
	s.log.Info().Int(xlog.FieldPage, page).Int("count", len(records)).Msg("page appended")
	return nil
}

// Refresh discards the sequence and reloads from page 1. Any fetch still
// in flight belongs to the previous epoch and its completion is dropped.
func (s *Sequence) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	s.records = nil
	s.page = 1
	s.hasMore = true
	s.loading = false // an in-flight fetch is now orphaned
	s.lastErr = nil
	s.mu.Unlock()
	return s.LoadFirstPage(ctx)
}

// ToggleLike flips the liked flag for id in the authoritative store and
// applies the optimistic counter delta to the in-memory record.
func (s *Sequence) ToggleLike(store FlagToggler, id int64) (bool, error) {
	return s.toggleFlag(store, SetLiked, id)
}

// ToggleBookmark flips the bookmarked flag for id.
func (s *Sequence) ToggleBookmark(store FlagToggler, id int64) (bool, error) {
	return s.toggleFlag(store, SetBookmarked, id)
}

// FlagToggler is the write side of the persisted flag sets.
type FlagToggler interface {
	Toggle(set string, id int64) (bool, error)
}

func (s *Sequence) toggleFlag(store FlagToggler, set string, id int64) (bool, error) {
	state, err := store.Toggle(set, id)
	if err != nil {
		return false, fmt.Errorf("feed: toggle %s: %w", set, err)
	}

	delta := -1
	if state {
		delta = 1
	}
	s.mu.Lock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		switch set {
		case SetLiked:
			s.records[i].Liked = state
			s.records[i].LikeCount += delta
		case SetBookmarked:
			s.records[i].Bookmarked = state
			s.records[i].BookmarkCount += delta
		}
		if s.cache != nil {
			s.cache.Put(s.records[i])
		}
		break
	}
	s.mu.Unlock()
	return state, nil
}

// Records returns a copy of the current sequence.
func (s *Sequence) Records() []VideoRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]VideoRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the current sequence length.
func (s *Sequence) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// RecordAt returns the record at a display position.
func (s *Sequence) RecordAt(index int) (VideoRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return VideoRecord{}, false
	}
	return s.records[index], true
}

// PositionOf returns the display position of a video id, or -1.
func (s *Sequence) PositionOf(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// State returns a snapshot of the pagination bookkeeping.
func (s *Sequence) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Len:         len(s.records),
		CurrentPage: s.page,
		HasMore:     s.hasMore,
		Loading:     s.loading,
		Err:         s.lastErr,
	}
}

// syncFlags overwrites the presentation booleans from the flag store.
func (s *Sequence) syncFlags(records []VideoRecord) {
	if s.flags == nil {
		return
	}
	for i := range records {
		if liked, err := s.flags.IsMember(SetLiked, records[i].ID); err == nil {
			records[i].Liked = liked
		}
		if marked, err := s.flags.IsMember(SetBookmarked, records[i].ID); err == nil {
			records[i].Bookmarked = marked
		}
	}
}
