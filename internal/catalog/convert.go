package catalog

import (
	"fmt"
	"strings"

	"github.com/reelfeed/reelfeed/internal/feed"
)

// The catalog carries no social data, so counters and captions are
// synthesized. Derivation is a pure function of the video id to keep
// records stable across fetches and tests deterministic.

var captions = []string{
	"Check out this amazing moment! #fyp #viral",
	"POV: When life gives you lemons #relatable",
	"This is everything! #trending #foryou",
	"Wait for it... #surprise #mustwatch",
	"Making memories one video at a time #content",
	"Can't stop watching this! #addictive #loop",
	"Tag someone who needs to see this #share",
	"The vibes are immaculate #mood #aesthetic",
}

// ToRecord converts one catalog video into a domain record, selecting
// the playable rendition via BestVideoFile.
func ToRecord(v Video) (feed.VideoRecord, error) {
	file, err := v.BestVideoFile()
	if err != nil {
		return feed.VideoRecord{}, fmt.Errorf("catalog: convert video %d: %w", v.ID, err)
	}

	username := strings.ReplaceAll(strings.ToLower(v.User.Name), " ", "_")

	return feed.VideoRecord{
		ID:        v.ID,
		SourceURI: file.Link,
		PosterURI: v.Image,
		Width:     v.Width,
		Height:    v.Height,
		Duration:  v.Duration,
		Author: feed.Author{
			ID:       v.User.ID,
			Name:     v.User.Name,
			Username: username,
			URL:      v.User.URL,
		},
		LikeCount:     synth(v.ID, 1, 1000, 100000),
		CommentCount:  synth(v.ID, 2, 100, 5000),
		ShareCount:    synth(v.ID, 3, 50, 2000),
		BookmarkCount: synth(v.ID, 4, 100, 10000),
		Caption:       captions[synth(v.ID, 5, 0, len(captions)-1)],
		MusicTitle:    "Original Sound - " + v.User.Name,
	}, nil
}

// ToRecords converts a page of catalog videos, dropping entries without
// playable files rather than failing the whole page.
func ToRecords(videos []Video) []feed.VideoRecord {
	out := make([]feed.VideoRecord, 0, len(videos))
	for _, v := range videos {
		rec, err := ToRecord(v)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// synth maps (id, salt) into [lo, hi] via a splitmix64 step.
func synth(id int64, salt uint64, lo, hi int) int {
	x := uint64(id) + salt*0x9e3779b97f4a7c15
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	return lo + int(x%uint64(hi-lo+1))
}
