package feed

import "sync"

// RecordCache is a shared id-keyed cache of every record seen this
// session. It lets the profile screens resolve liked/bookmarked ids back
// to full records without refetching. In-memory only; it does not
// persist media or metadata across restarts.
type RecordCache struct {
	mu      sync.RWMutex
	records map[int64]VideoRecord
}

// NewRecordCache creates an empty cache.
func NewRecordCache() *RecordCache {
	return &RecordCache{records: make(map[int64]VideoRecord)}
}

// Put stores or replaces one record.
func (c *RecordCache) Put(rec VideoRecord) {
	c.mu.Lock()
	c.records[rec.ID] = rec
	c.mu.Unlock()
}

// PutAll stores every record in the slice.
func (c *RecordCache) PutAll(recs []VideoRecord) {
	c.mu.Lock()
	for _, rec := range recs {
		c.records[rec.ID] = rec
	}
	c.mu.Unlock()
}

// Get returns the cached record for id.
func (c *RecordCache) Get(id int64) (VideoRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	return rec, ok
}

// ForIDs resolves ids to records, skipping ids never cached. Order
// follows the input slice.
func (c *RecordCache) ForIDs(ids []int64) []VideoRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]VideoRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := c.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of cached records.
func (c *RecordCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Clear empties the cache.
func (c *RecordCache) Clear() {
	c.mu.Lock()
	c.records = make(map[int64]VideoRecord)
	c.mu.Unlock()
}
