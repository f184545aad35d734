package player

import "errors"

var (
	// ErrNotResident is returned for transport commands on ids without a
	// pool entry. Callers must Acquire first; this is a caller bug, not
	// a runtime condition, and is surfaced so tests can catch it.
	ErrNotResident = errors.New("player: video id has no resident entry")

	// ErrPoolClosed is returned once the pool has been shut down.
	ErrPoolClosed = errors.New("player: pool is closed")
)
