package engine

import (
	"testing"
	"time"
)

func TestParseISO8601Duration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT1H2M3S", 3723},
		{"PT15M33S", 933},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT0S", 0},
		{"PT", 0},
		{"", 0},
		{"P1DT2H", 0},  // day components are out of scope
		{"1:02:03", 0}, // not ISO-8601
		{"PT1M30", 0},  // trailing digits without unit
	}
	for _, tt := range tests {
		if got := ParseISO8601Duration(tt.in); got != tt.want {
			t.Errorf("ParseISO8601Duration(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{75, "01:15"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3723, "01:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComputeMetrics(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("known elapsed", func(t *testing.T) {
		d := ItemDetail{
			PublishedAt: now.Add(-2 * time.Hour),
			Views:       1000,
			RawDuration: "PT10M",
		}
		m := ComputeMetrics(d, now)
		if m.ViewsPerHour != 500 {
			t.Errorf("vph = %v, want 500", m.ViewsPerHour)
		}
		if m.DurationSec != 600 {
			t.Errorf("duration = %d, want 600", m.DurationSec)
		}
	})

	t.Run("published this instant stays finite", func(t *testing.T) {
		d := ItemDetail{PublishedAt: now, Views: 100}
		m := ComputeMetrics(d, now)
		if m.HoursSince != minElapsedHours {
			t.Errorf("hours = %v, want floor %v", m.HoursSince, minElapsedHours)
		}
		if m.ViewsPerHour != 100/minElapsedHours {
			t.Errorf("vph = %v", m.ViewsPerHour)
		}
	})

	t.Run("older video has lower vph", func(t *testing.T) {
		fresh := ComputeMetrics(ItemDetail{PublishedAt: now.Add(-time.Hour), Views: 1000}, now)
		old := ComputeMetrics(ItemDetail{PublishedAt: now.Add(-100 * time.Hour), Views: 1000}, now)
		if fresh.ViewsPerHour <= old.ViewsPerHour {
			t.Errorf("fresh vph %v should exceed old vph %v", fresh.ViewsPerHour, old.ViewsPerHour)
		}
	})

	t.Run("malformed duration is zero", func(t *testing.T) {
		m := ComputeMetrics(ItemDetail{PublishedAt: now.Add(-time.Hour), RawDuration: "bogus"}, now)
		if m.DurationSec != 0 {
			t.Errorf("duration = %d, want 0", m.DurationSec)
		}
	})
}
