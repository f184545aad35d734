// Package player manages the bounded pool of live playback resources
// behind the video feed. The pool decides which video ids hold a live
// decoder, which get pre-warmed and which are torn down; the decoder
// itself sits behind the Driver interface.
package player

import "context"

// Driver opens playable media resources. Implementations are expected
// to be safe for concurrent Open calls.
type Driver interface {
	Open(ctx context.Context, uri string) (Resource, error)
}

// Resource is one live decoder/buffer bound to a single media source.
// The pool is the only owner; it arms the finished hook for seamless
// looping and closes the resource on eviction.
type Resource interface {
	Play() error
	Pause() error
	SeekStart() error

	// Ready reports whether enough media is buffered to start playback.
	Ready() bool

	// OnFinished registers the end-of-media hook, replacing any previous
	// one. A nil fn detaches the hook.
	OnFinished(fn func())

	Close() error
}
