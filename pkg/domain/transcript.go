package domain

import (
	"fmt"
	"math"
	"net/url"
)

// DefaultVideoHost is the playback host episode ids resolve against.
const DefaultVideoHost = "www.youtube.com"

// SearchResult is a transcript segment (chunk) returned by the similarity search,
// together with its similarity to the query.
type SearchResult struct {
	// ID identifies the chunk row in the store.
	ID int64 `json:"id"`

	// EpisodeID is the owning episode and doubles as the playable video id.
	EpisodeID     string `json:"episode_id"`
	EpisodeTitle  string `json:"episode_title"`
	EpisodeNumber *int   `json:"episode_number"`

	// ChunkIndex is the ordinal of the segment within its episode.
	ChunkIndex int `json:"chunk_index"`

	// StartTime and EndTime are offsets in seconds, StartTime <= EndTime.
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`

	Text string `json:"text"`

	// Similarity is passed through from the store unclamped.
	Similarity float64 `json:"similarity"`
}

// VideoURL returns the playback link for the segment's start offset.
func (r SearchResult) VideoURL(host string) string {
	return VideoURL(host, r.EpisodeID, r.StartTime)
}

// Episode is a transcribed podcast episode. Read-only from this service.
type Episode struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	EpisodeNumber   *int     `json:"episode_number"`
	UploadDate      *string  `json:"upload_date"`
	DurationSeconds *float64 `json:"duration_seconds"`
}

// GroupedEpisode is an episode header plus the ranked segments of one
// result set that belong to it. Built per response, never persisted.
type GroupedEpisode struct {
	EpisodeID     string         `json:"episode_id"`
	EpisodeTitle  string         `json:"episode_title"`
	EpisodeNumber *int           `json:"episode_number"`
	Chunks        []SearchResult `json:"chunks"`
}

// VideoURL builds https://<host>/watch?v=<id>&t=<floor(start)>s.
func VideoURL(host, episodeID string, startTime float64) string {
	if host == "" {
		host = DefaultVideoHost
	}
	return fmt.Sprintf("https://%s/watch?v=%s&t=%ds", host, url.QueryEscape(episodeID), int64(math.Floor(startTime)))
}

// FormatTimestamp renders an offset in seconds as m:ss.
func FormatTimestamp(seconds float64) string {
	total := int64(math.Floor(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
