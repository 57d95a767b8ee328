package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func initTranslateTest(t *testing.T, gtx, mymem http.HandlerFunc) {
	t.Helper()
	cfg := Config{}
	if gtx != nil {
		ts := httptest.NewServer(gtx)
		t.Cleanup(ts.Close)
		cfg.TranslateGTXBase = ts.URL
	} else {
		cfg.TranslateGTXBase = "http://127.0.0.1:1/unreachable"
	}
	if mymem != nil {
		ts := httptest.NewServer(mymem)
		t.Cleanup(ts.Close)
		cfg.TranslateMyMemBase = ts.URL
	} else {
		cfg.TranslateMyMemBase = "http://127.0.0.1:1/unreachable"
	}
	cfg.HTTPClient = &http.Client{Timeout: 2 * time.Second}
	Init(cfg)
	InitCache("", time.Minute, 100, time.Minute)
}

func TestTranslatePrimaryBackend(t *testing.T) {
	initTranslateTest(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sl") != "ko" || q.Get("tl") != "ja" {
			t.Errorf("langpair = %s->%s", q.Get("sl"), q.Get("tl"))
		}
		fmt.Fprint(w, `[[["ムクバン","먹방",null,null,10]],null,"ko"]`)
	}, nil)

	got := Translate(context.Background(), "먹방", "ko", "ja")
	if got != "ムクバン" {
		t.Errorf("got %q, want ムクバン", got)
	}
}

func TestTranslateFallbackToMyMemory(t *testing.T) {
	initTranslateTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("langpair") != "ko|en" {
			t.Errorf("langpair = %q", r.URL.Query().Get("langpair"))
		}
		fmt.Fprint(w, `{"responseData":{"translatedText":"mukbang"},"responseStatus":200}`)
	})

	got := Translate(context.Background(), "먹방", "ko", "en")
	if got != "mukbang" {
		t.Errorf("got %q, want mukbang", got)
	}
}

func TestTranslateFallbackToInput(t *testing.T) {
	initTranslateTest(t, nil, nil)
	before := metrics.TranslateFallbacks.Load()

	got := Translate(context.Background(), "먹방", "ko", "en")
	if got != "먹방" {
		t.Errorf("got %q, want input echoed back", got)
	}
	if metrics.TranslateFallbacks.Load() != before+1 {
		t.Error("fallback counter not incremented")
	}
}

func TestTranslateShortCircuits(t *testing.T) {
	initTranslateTest(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no backend call expected")
	}, nil)

	if got := Translate(context.Background(), "hello", "en", "en"); got != "hello" {
		t.Errorf("same-language: got %q", got)
	}
	if got := Translate(context.Background(), "   ", "en", "ko"); got != "" {
		t.Errorf("blank input: got %q", got)
	}
}

func TestTranslateMemoized(t *testing.T) {
	calls := 0
	initTranslateTest(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[[["hola","hello"]]]`)
	}, nil)

	ctx := context.Background()
	Translate(ctx, "hello", "en", "es")
	Translate(ctx, "hello", "en", "es")
	if calls != 1 {
		t.Errorf("backend calls = %d, want 1 (memoized)", calls)
	}
}

func TestTranslateKeywords(t *testing.T) {
	initTranslateTest(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		// Both inputs translate to the same word.
		_ = q
		fmt.Fprint(w, `[[["same"]]]`)
	}, nil)

	got := TranslateKeywords(context.Background(), []string{"eins", "", "  ", "zwei"}, "de", "en")
	if len(got) != 1 || got[0] != "same" {
		t.Errorf("got %v, want [same] (blank dropped, duplicate folded)", got)
	}
}

func TestTranslateGTXMultiSegment(t *testing.T) {
	initTranslateTest(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[["first ","a"],["second","b"]],null,"en"]`)
	}, nil)

	got := Translate(context.Background(), "a b", "en", "ko")
	if got != "first second" {
		t.Errorf("got %q, want segments joined", got)
	}
}
