package engine

import "strings"

// FormFactor classifies videos by duration relative to the shorts threshold.
type FormFactor string

const (
	FormBoth  FormFactor = "both"
	FormShort FormFactor = "short"
	FormLong  FormFactor = "long"
)

// MatchMode selects how keyword containment combines multiple keywords.
type MatchMode string

const (
	MatchAny MatchMode = "any"
	MatchAll MatchMode = "all"
)

// Filters configures the post-fetch filter chain.
type Filters struct {
	FormFactor      FormFactor `json:"form_factor"`
	ShortsSec       int        `json:"shorts_sec"` // short/long split, seconds
	MinViewsPerHour float64    `json:"min_vph"`
	IgnoreFilters   bool       `json:"ignore_filters"` // diagnostics: bypass form factor and velocity stages
	StrictKeywords  bool       `json:"strict_keywords"`
	Keywords        []string   `json:"keywords"`
	KeywordMode     MatchMode  `json:"keyword_mode"`
}

func acceptFormFactor(durationSec int, mode FormFactor, shortsSec int) bool {
	if shortsSec <= 0 {
		shortsSec = 60
	}
	switch mode {
	case FormShort:
		return durationSec < shortsSec
	case FormLong:
		return durationSec >= shortsSec
	}
	return true
}

// ContainsKeywords reports whether the case-folded text contains the keywords
// as substrings, combined per mode. An empty keyword set accepts vacuously:
// keyword filtering is opt-in on top of however the items were collected.
func ContainsKeywords(text string, keywords []string, mode MatchMode) bool {
	if len(keywords) == 0 {
		return true
	}
	t := strings.ToLower(text)
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		found := strings.Contains(t, k)
		if mode == MatchAll && !found {
			return false
		}
		if mode != MatchAll && found {
			return true
		}
	}
	return mode == MatchAll
}

// Accept runs the filter chain, short-circuiting on the first rejection.
// The strict-keyword stage has its own toggle and is deliberately not covered
// by the IgnoreFilters override.
func Accept(d ItemDetail, m DerivedMetrics, f Filters) bool {
	if !f.IgnoreFilters {
		if !acceptFormFactor(m.DurationSec, f.FormFactor, f.ShortsSec) {
			return false
		}
		if m.ViewsPerHour < f.MinViewsPerHour {
			return false
		}
	}
	if f.StrictKeywords && len(f.Keywords) > 0 {
		combined := d.Title + "\n" + d.Description + "\n" + strings.Join(d.Tags, " ")
		if !ContainsKeywords(combined, f.Keywords, f.KeywordMode) {
			return false
		}
	}
	return true
}
