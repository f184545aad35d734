// Package catalog is the translation boundary to the remote video
// catalog: paged search requests, wire decoding and conversion into
// domain records. No caching, no retries.
package catalog

import "strings"

// SearchResponse mirrors the catalog's search payload. Optional fields
// decode as nil, never as errors.
type SearchResponse struct {
	Page         int      `json:"page"`
	PerPage      int      `json:"per_page"`
	TotalResults int      `json:"total_results"`
	URL          *string  `json:"url,omitempty"`
	Videos       []Video  `json:"videos"`
	NextPage     *string  `json:"next_page,omitempty"`
	PrevPage     *string  `json:"prev_page,omitempty"`
}

// Video is one catalog entry.
type Video struct {
	ID            int64          `json:"id"`
	Width         int            `json:"width"`
	Height        int            `json:"height"`
	URL           string         `json:"url"`
	Image         string         `json:"image"`
	Duration      int            `json:"duration"`
	User          User           `json:"user"`
	VideoFiles    []VideoFile    `json:"video_files"`
	VideoPictures []VideoPicture `json:"video_pictures"`
}

// User is the video's author on the catalog side.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// VideoFile is one playable rendition. Quality and FileType are absent
// on some entries.
type VideoFile struct {
	ID       int64    `json:"id"`
	Quality  *string  `json:"quality,omitempty"`
	FileType *string  `json:"file_type,omitempty"`
	Width    *int     `json:"width,omitempty"`
	Height   *int     `json:"height,omitempty"`
	FPS      *float64 `json:"fps,omitempty"`
	Link     string   `json:"link"`
}

// VideoPicture is a preview still.
type VideoPicture struct {
	ID      int64  `json:"id"`
	Picture string `json:"picture"`
	NR      int    `json:"nr"`
}

// preferredQualities orders rendition selection for playback.
var preferredQualities = []string{"hd", "sd", "hls"}

// BestVideoFile picks the rendition to play: the first file whose
// quality matches "hd", then "sd", then "hls" (case-insensitive), then
// the first file in list order. An empty list is an error.
func (v Video) BestVideoFile() (VideoFile, error) {
	if len(v.VideoFiles) == 0 {
		return VideoFile{}, ErrNoVideoFiles
	}
	for _, want := range preferredQualities {
		for _, f := range v.VideoFiles {
			if f.Quality != nil && strings.EqualFold(*f.Quality, want) {
				return f, nil
			}
		}
	}
	return v.VideoFiles[0], nil
}
