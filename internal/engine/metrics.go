package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	RunsStarted        atomic.Int64
	RunsCompleted      atomic.Int64
	RunsFailed         atomic.Int64
	TranslateRequests  atomic.Int64
	TranslateFallbacks atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptMisses   atomic.Int64
}

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"runs_started":        metrics.RunsStarted.Load(),
		"runs_completed":      metrics.RunsCompleted.Load(),
		"runs_failed":         metrics.RunsFailed.Load(),
		"translate_requests":  metrics.TranslateRequests.Load(),
		"translate_fallbacks": metrics.TranslateFallbacks.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_misses":   metrics.TranscriptMisses.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns counters as a simple text format.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"runs_started", "runs_completed", "runs_failed",
		"translate_requests", "translate_fallbacks",
		"transcript_requests", "transcript_misses",
		"cache_hits", "cache_misses",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
