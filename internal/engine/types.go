package engine

import (
	"fmt"
	"time"
)

// --- YouTube Data API v3 wire types ---
//
// Responses are decoded into these at the gateway boundary; nothing downstream
// of the orchestrator sees raw JSON.

type searchResponse struct {
	Items         []searchItem `json:"items"`
	NextPageToken string       `json:"nextPageToken"`
}

type searchItem struct {
	ID      searchItemID  `json:"id"`
	Snippet searchSnippet `json:"snippet"`
}

type searchItemID struct {
	VideoID   string `json:"videoId"`
	ChannelID string `json:"channelId"`
}

type searchSnippet struct {
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID             string              `json:"id"`
	Snippet        videoSnippet        `json:"snippet"`
	ContentDetails videoContentDetails `json:"contentDetails"`
	Statistics     videoStatistics     `json:"statistics"`
}

type videoSnippet struct {
	PublishedAt  string       `json:"publishedAt"`
	ChannelID    string       `json:"channelId"`
	ChannelTitle string       `json:"channelTitle"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Tags         []string     `json:"tags"`
	Thumbnails   thumbnailSet `json:"thumbnails"`
}

type thumbnailSet struct {
	Default thumbnail `json:"default"`
	Medium  thumbnail `json:"medium"`
	High    thumbnail `json:"high"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type videoContentDetails struct {
	Duration string `json:"duration"`
}

// The API encodes counters as decimal strings.
type videoStatistics struct {
	ViewCount string `json:"viewCount"`
}

type channelListResponse struct {
	Items []channelItem `json:"items"`
}

type channelItem struct {
	ID         string            `json:"id"`
	Statistics channelStatistics `json:"statistics"`
}

type channelStatistics struct {
	SubscriberCount string `json:"subscriberCount"`
}

// --- Domain types ---

// ItemDetail is the typed per-video record built from a videos.list item.
type ItemDetail struct {
	ID           string
	Title        string
	Description  string
	Tags         []string
	ChannelID    string
	ChannelTitle string
	PublishedAt  time.Time
	RawDuration  string // ISO-8601, e.g. "PT1H2M3S"
	Views        int64
	Thumbnail    string
}

// DerivedMetrics holds the per-video ranking signals computed from an ItemDetail.
type DerivedMetrics struct {
	PublishedAt  time.Time
	HoursSince   float64 // floored at minElapsedHours
	Views        int64
	ViewsPerHour float64
	DurationSec  int
}

// ResultRow is one ranked row of the published result set.
// JSON keys match what the table page consumes.
type ResultRow struct {
	Channel      string   `json:"channel"`
	Title        string   `json:"title"`
	Uploaded     string   `json:"uploaded"`
	UploadedTS   int64    `json:"uploaded_ts"`
	Views        int64    `json:"views"`
	ViewsPerHour float64  `json:"vph"`
	Subscribers  int64    `json:"subs"`
	ViewsToSubs  *float64 `json:"vs"` // nil when subscriber count is unknown or zero
	Duration     string   `json:"duration"`
	DurationSec  int      `json:"duration_sec"`
	URL          string   `json:"url"`
	VideoID      string   `json:"vid"`
	Thumbnail    string   `json:"thumb"`
}

// WatchURL returns the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// FallbackThumbnail returns the i.ytimg URL used when the snippet carries none.
func FallbackThumbnail(videoID string) string {
	return fmt.Sprintf("https://i.ytimg.com/vi/%s/mqdefault.jpg", videoID)
}
