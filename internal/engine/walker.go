package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// pageSize is the fixed search.list page size.
const pageSize = 50

// SearchSpec describes one search fan-out branch. Exactly one of Query or
// ChannelID should be set.
type SearchSpec struct {
	Query          string
	ChannelID      string
	Region         string
	Language       string
	PublishedAfter time.Time
	MaxResults     int
	Order          string // "date", "viewCount", "relevance"
	Key            string
	WaitMinutes    float64
	MaxRetries     int
}

// SearchVideos walks the search endpoint page by page and returns video IDs,
// capped at spec.MaxResults, with no duplicates within one walk.
//
// When PublishedAfter is set, any requested order other than "date" is
// silently overridden: relevance- or view-sorted pagination may never reach
// recent uploads, and the time filter is the stronger intent.
func (g *Gateway) SearchVideos(ctx context.Context, spec SearchSpec) ([]string, error) {
	if spec.MaxResults <= 0 {
		return nil, nil
	}
	order := spec.Order
	if !spec.PublishedAfter.IsZero() && order != "date" {
		order = "date"
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("order", order)
	if spec.Query != "" {
		params.Set("q", spec.Query)
	}
	if spec.ChannelID != "" {
		params.Set("channelId", spec.ChannelID)
	}
	if spec.Region != "" {
		params.Set("regionCode", spec.Region)
	}
	if spec.Language != "" {
		params.Set("relevanceLanguage", spec.Language)
	}
	if !spec.PublishedAfter.IsZero() {
		params.Set("publishedAfter", spec.PublishedAfter.UTC().Format(time.RFC3339))
	}

	var ids []string
	seen := make(map[string]struct{})
	for {
		body, err := g.Call(ctx, KindSearch, params, spec.Key, spec.WaitMinutes, spec.MaxRetries)
		if err != nil {
			return nil, err
		}
		var page searchResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode search page: %w", err)
		}
		for _, item := range page.Items {
			id := item.ID.VideoID
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			if len(ids) >= spec.MaxResults {
				return ids, nil
			}
		}
		if page.NextPageToken == "" {
			return ids, nil
		}
		params.Set("pageToken", page.NextPageToken)
	}
}

// ResolveChannel resolves an @handle to a channel ID via one channel-typed
// search. Returns "" (no error) when the handle matches nothing.
func (g *Gateway) ResolveChannel(ctx context.Context, handle, key string, waitMinutes float64, maxRetries int) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("q", handle)
	params.Set("maxResults", "1")

	body, err := g.Call(ctx, KindSearch, params, key, waitMinutes, maxRetries)
	if err != nil {
		return "", err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode channel search: %w", err)
	}
	if len(resp.Items) == 0 {
		slog.Debug("channel handle unresolved", slog.String("handle", handle))
		return "", nil
	}
	if id := resp.Items[0].Snippet.ChannelID; id != "" {
		return id, nil
	}
	return resp.Items[0].ID.ChannelID, nil
}
