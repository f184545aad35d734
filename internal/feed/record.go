// Package feed owns the scroll-ordered video sequence and its pagination
// state. Records are appended as pages arrive; the sequence is only ever
// cleared by an explicit refresh.
package feed

import "context"

// Author identifies the creator attached to a video record.
type Author struct {
	ID       int64
	Name     string
	Username string
	URL      string
}

// VideoRecord is the immutable descriptor for one feed item. The social
// counters and the Liked/Bookmarked booleans are presentation-layer
// copies; the flag store is authoritative across restarts.
type VideoRecord struct {
	ID        int64
	SourceURI string
	PosterURI string // empty = absent
	Width     int
	Height    int
	Duration  int // seconds
	Author    Author

	LikeCount     int
	CommentCount  int
	ShareCount    int
	BookmarkCount int
	Liked         bool
	Bookmarked    bool

	Caption    string
	MusicTitle string
}

// Catalog is the slice of the remote catalog the sequence depends on.
type Catalog interface {
	SearchVideos(ctx context.Context, query string, page, perPage int) ([]VideoRecord, error)
}

// FlagSource is the read side of the persisted like/bookmark sets.
type FlagSource interface {
	IsMember(set string, id int64) (bool, error)
}
