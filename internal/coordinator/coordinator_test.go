package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelfeed/reelfeed/internal/feed"
	"github.com/reelfeed/reelfeed/internal/player"
)

type fakeFeed struct {
	records   []feed.VideoRecord
	loadCalls []int
}

func (f *fakeFeed) RecordAt(i int) (feed.VideoRecord, bool) {
	if i < 0 || i >= len(f.records) {
		return feed.VideoRecord{}, false
	}
	return f.records[i], true
}

func (f *fakeFeed) MaybeLoadMore(_ context.Context, i int) error {
	f.loadCalls = append(f.loadCalls, i)
	return nil
}

type fakePool struct {
	mu        sync.Mutex
	acquired  []int64
	preloaded []int64
	played    []int64
	released  []int64
	pauseAlls int
	refreshes int
	playErr   error
}

func (p *fakePool) Acquire(id int64, uri string) (*player.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquired = append(p.acquired, id)
	return nil, nil
}

func (p *fakePool) Preload(id int64, uri string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.preloaded = append(p.preloaded, id)
}

func (p *fakePool) Play(id int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.played = append(p.played, id)
	return nil
}

func (p *fakePool) PauseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseAlls++
}

func (p *fakePool) Release(id int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = append(p.released, id)
}

func (p *fakePool) RefreshBuffering() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshes++
}

func (p *fakePool) refreshCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshes
}

func testRecords(ids ...int64) []feed.VideoRecord {
	out := make([]feed.VideoRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, feed.VideoRecord{ID: id, SourceURI: uriFor(id)})
	}
	return out
}

func uriFor(id int64) string { return "https://cdn.example.com/" + string(rune('a'+id)) + ".mp4" }

func TestVisibleIndexPlaysAndPreloadsNext(t *testing.T) {
	f := &fakeFeed{records: testRecords(10, 11, 12)}
	p := &fakePool{}
	c := New(f, p, Config{})
	defer c.Stop()

	require.NoError(t, c.VisibleIndexChanged(context.Background(), 1))

	assert.Equal(t, []int64{11}, p.acquired)
	assert.Equal(t, []int64{11}, p.played)
	assert.Equal(t, []int64{12}, p.preloaded, "next cell must be pre-warmed")
	assert.Equal(t, []int{1}, f.loadCalls, "lookahead check must see the visible index")
}

func TestVisibleIndexAtTailSkipsPreload(t *testing.T) {
	f := &fakeFeed{records: testRecords(10, 11)}
	p := &fakePool{}
	c := New(f, p, Config{})
	defer c.Stop()

	require.NoError(t, c.VisibleIndexChanged(context.Background(), 1))
	assert.Empty(t, p.preloaded, "no neighbor beyond the tail")
}

func TestVisibleIndexOutOfRangeIsNoop(t *testing.T) {
	f := &fakeFeed{records: testRecords(10)}
	p := &fakePool{}
	c := New(f, p, Config{})
	defer c.Stop()

	require.NoError(t, c.VisibleIndexChanged(context.Background(), 5))
	assert.Empty(t, p.acquired)
	assert.Empty(t, p.played)
}

func TestHideAndShowResumesRememberedPosition(t *testing.T) {
	f := &fakeFeed{records: testRecords(10, 11, 12)}
	p := &fakePool{}
	c := New(f, p, Config{})
	defer c.Stop()

	require.NoError(t, c.VisibleIndexChanged(context.Background(), 2))
	c.TabHidden()
	assert.Equal(t, 1, p.pauseAlls)

	c.TabShown()
	assert.Equal(t, []int64{12, 12}, p.played, "show must resume the last focused video")
}

func TestHiddenScrollDoesNotPlay(t *testing.T) {
	f := &fakeFeed{records: testRecords(10, 11, 12)}
	p := &fakePool{}
	c := New(f, p, Config{})
	defer c.Stop()

	c.TabHidden()
	require.NoError(t, c.VisibleIndexChanged(context.Background(), 0))
	assert.Equal(t, []int64{10}, p.acquired, "position still tracked while hidden")
	assert.Empty(t, p.played)

	c.TabShown()
	assert.Equal(t, []int64{10}, p.played)
}

func TestShowWithoutPositionIsNoop(t *testing.T) {
	f := &fakeFeed{records: testRecords(10)}
	p := &fakePool{}
	c := New(f, p, Config{})
	defer c.Stop()

	c.TabShown()
	assert.Empty(t, p.played)
}

func TestCellRemovedReleases(t *testing.T) {
	f := &fakeFeed{records: testRecords(10)}
	p := &fakePool{}
	c := New(f, p, Config{})
	defer c.Stop()

	c.CellRemoved(10)
	assert.Equal(t, []int64{10}, p.released)
}

func TestBufferPollTicksAndStops(t *testing.T) {
	f := &fakeFeed{records: testRecords(10)}
	p := &fakePool{}
	c := New(f, p, Config{BufferPoll: 5 * time.Millisecond})

	require.Eventually(t, func() bool { return p.refreshCount() >= 2 },
		time.Second, time.Millisecond, "poll never ticked")
	c.Stop()

	after := p.refreshCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, p.refreshCount(), "poll must stop after Stop")
}
