package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog serves canned pages, optionally failing or blocking.
type fakeCatalog struct {
	mu      sync.Mutex
	pages   map[int][]VideoRecord
	failOn  map[int]error
	gate    chan struct{} // non-nil: fetches block until closed
	fetches []int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		pages:  make(map[int][]VideoRecord),
		failOn: make(map[int]error),
	}
}

func (c *fakeCatalog) SearchVideos(ctx context.Context, query string, page, perPage int) ([]VideoRecord, error) {
	c.mu.Lock()
	c.fetches = append(c.fetches, page)
	gate := c.gate
	err := c.failOn[page]
	recs := c.pages[page]
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]VideoRecord, len(recs))
	copy(out, recs)
	return out, nil
}

func (c *fakeCatalog) fetchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fetches)
}

func page(start int64, n int) []VideoRecord {
	out := make([]VideoRecord, 0, n)
	for i := 0; i < n; i++ {
		id := start + int64(i)
		out = append(out, VideoRecord{
			ID:        id,
			SourceURI: fmt.Sprintf("https://cdn.example.com/%d.mp4", id),
			LikeCount: 100,
		})
	}
	return out
}

func TestLoadFirstPageReplaces(t *testing.T) {
	c := newFakeCatalog()
	c.pages[1] = page(100, 5)
	s := NewSequence(c, nil, nil, "people", 5)

	require.NoError(t, s.LoadFirstPage(context.Background()))
	require.Equal(t, 5, s.Len())

	// A later first-page load replaces, never appends.
	c.mu.Lock()
	c.pages[1] = page(200, 3)
	c.mu.Unlock()
	require.NoError(t, s.LoadFirstPage(context.Background()))
	require.Equal(t, 3, s.Len())
	rec, ok := s.RecordAt(0)
	require.True(t, ok)
	assert.Equal(t, int64(200), rec.ID)
}

func TestFirstPageFailureKeepsStaleRecords(t *testing.T) {
	c := newFakeCatalog()
	c.pages[1] = page(100, 4)
	s := NewSequence(c, nil, nil, "people", 4)
	require.NoError(t, s.LoadFirstPage(context.Background()))

	c.mu.Lock()
	c.failOn[1] = fmt.Errorf("catalog down")
	c.mu.Unlock()
	err := s.LoadFirstPage(context.Background())
	require.Error(t, err)

	assert.Equal(t, 4, s.Len(), "stale records beat a blank screen")
	assert.Error(t, s.State().Err)
}

func TestLookaheadBoundary(t *testing.T) {
	c := newFakeCatalog()
	c.pages[1] = page(100, 10)
	c.pages[2] = page(200, 10)
	s := NewSequence(c, nil, nil, "people", 10)
	require.NoError(t, s.LoadFirstPage(context.Background()))

	// len=10: index 6 is outside the trailing window, 7 is inside.
	require.NoError(t, s.MaybeLoadMore(context.Background(), 6))
	assert.Equal(t, 10, s.Len())

	require.NoError(t, s.MaybeLoadMore(context.Background(), 7))
	assert.Equal(t, 20, s.Len())
	assert.Equal(t, 2, s.State().CurrentPage)
}

func TestNextPageFailureRollsBack(t *testing.T) {
	c := newFakeCatalog()
	c.pages[1] = page(100, 10)
	c.failOn[2] = fmt.Errorf("rate limited")
	s := NewSequence(c, nil, nil, "people", 10)
	require.NoError(t, s.LoadFirstPage(context.Background()))

	err := s.LoadNextPage(context.Background())
	require.Error(t, err)
	st := s.State()
	assert.Equal(t, 1, st.CurrentPage, "failed page must not advance the counter")
	assert.True(t, st.HasMore)
	assert.Equal(t, 10, st.Len)

	// A retry targets the same page and succeeds.
	c.mu.Lock()
	delete(c.failOn, 2)
	c.pages[2] = page(200, 10)
	c.mu.Unlock()
	require.NoError(t, s.LoadNextPage(context.Background()))
	assert.Equal(t, 20, s.Len())
	assert.Equal(t, 2, s.State().CurrentPage)
}

func TestEmptyPageEndsPagination(t *testing.T) {
	c := newFakeCatalog()
	c.pages[1] = page(100, 10)
	s := NewSequence(c, nil, nil, "people", 10)
	require.NoError(t, s.LoadFirstPage(context.Background()))

	require.NoError(t, s.LoadNextPage(context.Background())) // page 2 is empty
	st := s.State()
	assert.False(t, st.HasMore)
	assert.Equal(t, 10, st.Len)

	// Further attempts are no-ops, no fetch issued.
	before := c.fetchCount()
	require.NoError(t, s.LoadNextPage(context.Background()))
	require.NoError(t, s.MaybeLoadMore(context.Background(), 9))
	assert.Equal(t, before, c.fetchCount())
}

func TestOnlyOneFetchInFlight(t *testing.T) {
	c := newFakeCatalog()
	gate := make(chan struct{})
	c.gate = gate
	c.pages[1] = page(100, 5)
	s := NewSequence(c, nil, nil, "people", 5)

	done := make(chan error, 1)
	go func() { done <- s.LoadFirstPage(context.Background()) }()
	require.Eventually(t, func() bool { return c.fetchCount() == 1 },
		time.Second, time.Millisecond)

	// Concurrent attempts bail out while the first is parked.
	require.NoError(t, s.LoadFirstPage(context.Background()))
	require.NoError(t, s.LoadNextPage(context.Background()))
	assert.Equal(t, 1, c.fetchCount())

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, 5, s.Len())
}

func TestRefreshDiscardsInFlightResult(t *testing.T) {
	c := newFakeCatalog()
	gate := make(chan struct{})
	c.gate = gate
	c.pages[1] = page(100, 5)
	s := NewSequence(c, nil, nil, "people", 5)

	// Park a first-page fetch, then refresh past it.
	stale := make(chan error, 1)
	go func() { stale <- s.LoadFirstPage(context.Background()) }()
	require.Eventually(t, func() bool { return c.fetchCount() == 1 },
		time.Second, time.Millisecond)

	c.mu.Lock()
	c.gate = nil
	c.pages[1] = page(500, 2)
	c.mu.Unlock()
	require.NoError(t, s.Refresh(context.Background()))

	close(gate)
	require.NoError(t, <-stale)

	// The orphaned completion must not clobber the refreshed contents.
	require.Equal(t, 2, s.Len())
	rec, ok := s.RecordAt(0)
	require.True(t, ok)
	assert.Equal(t, int64(500), rec.ID)
}

type memFlags struct {
	mu   sync.Mutex
	sets map[string]map[int64]bool
}

func newMemFlags() *memFlags {
	return &memFlags{sets: map[string]map[int64]bool{}}
}

func (m *memFlags) IsMember(set string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[set][id], nil
}

func (m *memFlags) Toggle(set string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[set] == nil {
		m.sets[set] = map[int64]bool{}
	}
	m.sets[set][id] = !m.sets[set][id]
	return m.sets[set][id], nil
}

func TestToggleLikeUpdatesRecordAndCache(t *testing.T) {
	c := newFakeCatalog()
	c.pages[1] = page(100, 3)
	flags := newMemFlags()
	cache := NewRecordCache()
	s := NewSequence(c, flags, cache, "people", 3)
	require.NoError(t, s.LoadFirstPage(context.Background()))

	liked, err := s.ToggleLike(flags, 101)
	require.NoError(t, err)
	assert.True(t, liked)

	i := s.PositionOf(101)
	require.GreaterOrEqual(t, i, 0)
	rec, _ := s.RecordAt(i)
	assert.True(t, rec.Liked)
	assert.Equal(t, 101, rec.LikeCount)

	cached, ok := cache.Get(101)
	require.True(t, ok)
	assert.True(t, cached.Liked)

	// Toggling back restores the count.
	liked, err = s.ToggleLike(flags, 101)
	require.NoError(t, err)
	assert.False(t, liked)
	rec, _ = s.RecordAt(s.PositionOf(101))
	assert.Equal(t, 100, rec.LikeCount)
}

func TestFetchedRecordsSyncPersistedFlags(t *testing.T) {
	c := newFakeCatalog()
	c.pages[1] = page(100, 3)
	flags := newMemFlags()
	_, err := flags.Toggle(SetLiked, 102)
	require.NoError(t, err)

	s := NewSequence(c, flags, nil, "people", 3)
	require.NoError(t, s.LoadFirstPage(context.Background()))

	rec, ok := s.RecordAt(s.PositionOf(102))
	require.True(t, ok)
	assert.True(t, rec.Liked, "persisted like must survive a refetch")
	rec, _ = s.RecordAt(s.PositionOf(101))
	assert.False(t, rec.Liked)
}
