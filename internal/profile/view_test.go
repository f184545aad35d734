package profile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeed/reelfeed/internal/feed"
	"github.com/reelfeed/reelfeed/internal/flagstore"
)

// fakeStore keeps sets in memory and mimics the subscription contract.
type fakeStore struct {
	members   map[string][]int64
	err       error
	listeners []func(string)
}

func newFakeStore() *fakeStore {
	return &fakeStore{members: make(map[string][]int64)}
}

func (s *fakeStore) AllMembers(set string) ([]int64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.members[set], nil
}

func (s *fakeStore) Subscribe(fn func(string)) func() {
	s.listeners = append(s.listeners, fn)
	return func() { s.listeners = nil }
}

func (s *fakeStore) add(set string, id int64) {
	s.members[set] = append([]int64{id}, s.members[set]...)
	for _, fn := range s.listeners {
		fn(set)
	}
}

func cachedRecords(cache *feed.RecordCache, ids ...int64) {
	for _, id := range ids {
		cache.Put(feed.VideoRecord{ID: id, Caption: fmt.Sprintf("clip %d", id)})
	}
}

func TestReloadDerivesGrids(t *testing.T) {
	store := newFakeStore()
	cache := feed.NewRecordCache()
	cachedRecords(cache, 1, 2, 3)
	store.members[flagstore.SetLiked] = []int64{3, 1}
	store.members[flagstore.SetBookmarked] = []int64{2}

	v := NewView(store, cache)
	defer v.Close()
	require.NoError(t, v.Reload())

	liked := v.LikedVideos()
	require.Len(t, liked, 2)
	assert.Equal(t, int64(3), liked[0].ID, "most recent first")
	assert.Equal(t, int64(1), liked[1].ID)
	assert.True(t, liked[0].Liked)

	saved := v.SavedVideos()
	require.Len(t, saved, 1)
	assert.Equal(t, int64(2), saved[0].ID)
	assert.True(t, saved[0].Bookmarked)
}

func TestReloadSkipsUncachedIDs(t *testing.T) {
	store := newFakeStore()
	cache := feed.NewRecordCache()
	cachedRecords(cache, 1)
	store.members[flagstore.SetLiked] = []int64{1, 99}

	v := NewView(store, cache)
	defer v.Close()
	require.NoError(t, v.Reload())

	liked := v.LikedVideos()
	require.Len(t, liked, 1)
	assert.Equal(t, int64(1), liked[0].ID)
}

func TestFlagChangeRefreshesGrid(t *testing.T) {
	store := newFakeStore()
	cache := feed.NewRecordCache()
	cachedRecords(cache, 7)

	v := NewView(store, cache)
	defer v.Close()
	require.NoError(t, v.Reload())
	assert.Empty(t, v.LikedVideos())

	store.add(flagstore.SetLiked, 7)
	liked := v.LikedVideos()
	require.Len(t, liked, 1)
	assert.Equal(t, int64(7), liked[0].ID)
}

func TestNeedsRetry(t *testing.T) {
	store := newFakeStore()
	cache := feed.NewRecordCache()
	v := NewView(store, cache)
	defer v.Close()

	store.err = fmt.Errorf("disk unhappy")
	require.Error(t, v.Reload())
	assert.True(t, v.NeedsRetry())
	assert.Error(t, v.Err())

	store.err = nil
	require.NoError(t, v.Reload())
	assert.False(t, v.NeedsRetry())
	assert.NoError(t, v.Err())
}

type fakeCatalog struct {
	records []feed.VideoRecord
	err     error
	calls   int
}

func (c *fakeCatalog) SearchVideos(_ context.Context, _ string, _, _ int) ([]feed.VideoRecord, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.records, nil
}

func TestLoadGridWarmsCacheAndDerives(t *testing.T) {
	store := newFakeStore()
	cache := feed.NewRecordCache()
	store.members[flagstore.SetLiked] = []int64{2}
	cat := &fakeCatalog{records: []feed.VideoRecord{{ID: 1}, {ID: 2}}}

	v := NewView(store, cache)
	defer v.Close()
	require.NoError(t, v.LoadGrid(context.Background(), cat, "people", 2))

	liked := v.LikedVideos()
	require.Len(t, liked, 1)
	assert.Equal(t, int64(2), liked[0].ID)
	assert.Equal(t, 2, cache.Len())
}

func TestLoadGridFailureSetsRetry(t *testing.T) {
	store := newFakeStore()
	cache := feed.NewRecordCache()
	cat := &fakeCatalog{err: fmt.Errorf("catalog down")}

	v := NewView(store, cache)
	defer v.Close()
	require.Error(t, v.LoadGrid(context.Background(), cat, "people", 2))
	assert.True(t, v.NeedsRetry())

	cat.err = nil
	cat.records = []feed.VideoRecord{{ID: 5}}
	store.members[flagstore.SetBookmarked] = []int64{5}
	require.NoError(t, v.LoadGrid(context.Background(), cat, "people", 2))
	assert.False(t, v.NeedsRetry())
	require.Len(t, v.SavedVideos(), 1)
}

func TestCloseStopsRefreshes(t *testing.T) {
	store := newFakeStore()
	cache := feed.NewRecordCache()
	cachedRecords(cache, 5)

	v := NewView(store, cache)
	v.Close()

	store.add(flagstore.SetLiked, 5)
	assert.Empty(t, v.LikedVideos(), "closed view must not refresh")
}
