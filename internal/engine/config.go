package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	APIBase              string // YouTube Data API v3 base URL
	DailyQuota           int    // quota units per day
	FanOutDelay          time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	TranslateGTXBase     string // Google translate gtx endpoint
	TranslateMyMemBase   string // MyMemory endpoint
	WatchPageBase        string // YouTube watch page base (transcript scraping)
	HTTPClient           *http.Client
}

var cfg Config

// Cfg exposes the engine configuration for the server layer.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-value fields fall back to working defaults.
func Init(c Config) {
	if c.APIBase == "" {
		c.APIBase = "https://www.googleapis.com/youtube/v3"
	}
	if c.DailyQuota == 0 {
		c.DailyQuota = DefaultDailyQuota
	}
	if c.FanOutDelay == 0 {
		c.FanOutDelay = 20 * time.Millisecond
	}
	if c.TranslateGTXBase == "" {
		c.TranslateGTXBase = "https://translate.googleapis.com/translate_a/single"
	}
	if c.TranslateMyMemBase == "" {
		c.TranslateMyMemBase = "https://api.mymemory.translated.net/get"
	}
	if c.WatchPageBase == "" {
		c.WatchPageBase = "https://www.youtube.com"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
