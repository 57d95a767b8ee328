package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// minElapsedHours floors the elapsed-time divisor so views-per-hour is always
// finite, even for a video published this instant.
const minElapsedHours = 1e-6

var iso8601DurationRE = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISO8601Duration converts a "PT#H#M#S" duration to total seconds.
// Every component is optional; malformed input yields 0 rather than an error.
func ParseISO8601Duration(s string) int {
	m := iso8601DurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + sec
}

// FormatDuration renders seconds as MM:SS, or HH:MM:SS from one hour up.
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ComputeMetrics derives the ranking signals for one item. Pure: no I/O, no
// clock access beyond the supplied now.
func ComputeMetrics(d ItemDetail, now time.Time) DerivedMetrics {
	hours := now.Sub(d.PublishedAt).Hours()
	if hours < minElapsedHours {
		hours = minElapsedHours
	}
	return DerivedMetrics{
		PublishedAt:  d.PublishedAt,
		HoursSince:   hours,
		Views:        d.Views,
		ViewsPerHour: float64(d.Views) / hours,
		DurationSec:  ParseISO8601Duration(d.RawDuration),
	}
}
