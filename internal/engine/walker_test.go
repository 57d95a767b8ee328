package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func searchPage(ids []string, next string) string {
	type item struct {
		ID map[string]string `json:"id"`
	}
	items := make([]item, len(ids))
	for i, id := range ids {
		items[i] = item{ID: map[string]string{"videoId": id}}
	}
	out, _ := json.Marshal(map[string]any{"items": items, "nextPageToken": next})
	return string(out)
}

func TestSearchVideosPagination(t *testing.T) {
	pages := map[string]string{
		"":   searchPage([]string{"a1", "a2"}, "p2"),
		"p2": searchPage([]string{"a3", "a2"}, "p3"), // a2 repeats across pages
		"p3": searchPage([]string{"a4"}, ""),
	}
	var requested []string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		requested = append(requested, token)
		fmt.Fprint(w, pages[token])
	})

	ids, err := gw.SearchVideos(context.Background(), SearchSpec{
		Query:      "mukbang",
		MaxResults: 10,
	})
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	want := []string{"a1", "a2", "a3", "a4"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
	if len(requested) != 3 {
		t.Errorf("pages walked = %d, want 3", len(requested))
	}
}

func TestSearchVideosCapsAtMaxResults(t *testing.T) {
	calls := 0
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		ids := make([]string, pageSize)
		for i := range ids {
			ids[i] = fmt.Sprintf("v%d-%d", calls, i)
		}
		fmt.Fprint(w, searchPage(ids, "more"))
	})

	ids, err := gw.SearchVideos(context.Background(), SearchSpec{Query: "q", MaxResults: 75})
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	if len(ids) != 75 {
		t.Errorf("len(ids) = %d, want 75", len(ids))
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2 (cap reached mid-page)", calls)
	}
}

func TestSearchVideosNonPositiveMax(t *testing.T) {
	calls := 0
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, searchPage([]string{"v1"}, ""))
	})

	for _, max := range []int{0, -5} {
		ids, err := gw.SearchVideos(context.Background(), SearchSpec{Query: "q", MaxResults: max})
		if err != nil {
			t.Fatalf("SearchVideos(max=%d): %v", max, err)
		}
		if len(ids) != 0 {
			t.Errorf("max=%d returned %v, want none", max, ids)
		}
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 (no quota spent on an empty request)", calls)
	}
}

func TestSearchVideosDateOverride(t *testing.T) {
	var gotOrder, gotPublishedAfter string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotOrder = r.URL.Query().Get("order")
		gotPublishedAfter = r.URL.Query().Get("publishedAfter")
		fmt.Fprint(w, searchPage(nil, ""))
	})

	after := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := gw.SearchVideos(context.Background(), SearchSpec{
		Query:          "q",
		Order:          "viewCount",
		PublishedAfter: after,
		MaxResults:     10,
	})
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	if gotOrder != "date" {
		t.Errorf("order = %q, want date override", gotOrder)
	}
	if gotPublishedAfter != "2026-08-01T00:00:00Z" {
		t.Errorf("publishedAfter = %q", gotPublishedAfter)
	}
}

func TestSearchVideosKeepsOrderWithoutTimeFilter(t *testing.T) {
	var gotOrder string
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotOrder = r.URL.Query().Get("order")
		fmt.Fprint(w, searchPage(nil, ""))
	})
	_, err := gw.SearchVideos(context.Background(), SearchSpec{Query: "q", Order: "viewCount", MaxResults: 10})
	if err != nil {
		t.Fatalf("SearchVideos: %v", err)
	}
	if gotOrder != "viewCount" {
		t.Errorf("order = %q, want viewCount", gotOrder)
	}
}

func TestResolveChannel(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "channel" {
			t.Errorf("type = %q, want channel", r.URL.Query().Get("type"))
		}
		if r.URL.Query().Get("q") == "@known" {
			fmt.Fprint(w, `{"items":[{"id":{"channelId":"UC123"},"snippet":{"channelId":"UC123"}}]}`)
			return
		}
		fmt.Fprint(w, `{"items":[]}`)
	})

	id, err := gw.ResolveChannel(context.Background(), "@known", "k", 0, 0)
	if err != nil {
		t.Fatalf("ResolveChannel: %v", err)
	}
	if id != "UC123" {
		t.Errorf("id = %q, want UC123", id)
	}

	// A miss is silent, not an error.
	id, err = gw.ResolveChannel(context.Background(), "@nobody", "k", 0, 0)
	if err != nil {
		t.Fatalf("ResolveChannel miss: %v", err)
	}
	if id != "" {
		t.Errorf("id = %q, want empty", id)
	}
}

func newTestGatewayMux(t *testing.T, mux *http.ServeMux) (*Gateway, *Ledger) {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	Init(Config{APIBase: ts.URL, HTTPClient: ts.Client()})
	ledger := NewLedger()
	return NewGateway(ledger), ledger
}
