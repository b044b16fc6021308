package behavioral

import (
	"testing"
	"time"

	"github.com/mallardmetrics/mallard/internal/steps"
)

func mustFilters(t *testing.T, tokens ...string) []steps.Filter {
	t.Helper()
	f, err := steps.ParseAll(tokens)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestFunnelLevelWithinWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filters := mustFilters(t, "page:/pricing", "event:signup")
	rows := []eventRow{
		{Pathname: "/pricing", EventName: "pageview", Timestamp: base},
		{Pathname: "/other", EventName: "pageview", Timestamp: base.Add(time.Minute)},
		{Pathname: "", EventName: "signup", Timestamp: base.Add(time.Hour)},
	}
	if got := funnelLevel(rows, filters, 24*time.Hour); got != 2 {
		t.Errorf("expected level 2, got %d", got)
	}
}

func TestFunnelLevelOutsideWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	filters := mustFilters(t, "page:/pricing", "event:signup")
	rows := []eventRow{
		{Pathname: "/pricing", EventName: "pageview", Timestamp: base},
		{Pathname: "", EventName: "signup", Timestamp: base.Add(2 * time.Hour)},
	}
	if got := funnelLevel(rows, filters, time.Hour); got != 1 {
		t.Errorf("expected level stuck at 1, got %d", got)
	}
}

func TestFunnelLevelNeverStarted(t *testing.T) {
	filters := mustFilters(t, "page:/pricing", "event:signup")
	rows := []eventRow{
		{Pathname: "/unrelated", EventName: "pageview", Timestamp: time.Now()},
	}
	if got := funnelLevel(rows, filters, time.Hour); got != 0 {
		t.Errorf("expected level 0, got %d", got)
	}
}

func TestIntervalDurationUnits(t *testing.T) {
	cases := map[string]time.Duration{
		"1 day":    24 * time.Hour,
		"3 hours":  3 * time.Hour,
		"2 weeks":  14 * 24 * time.Hour,
		"30 minutes": 30 * time.Minute,
	}
	for s, want := range cases {
		got, err := intervalDuration(s)
		if err != nil {
			t.Fatalf("%q: %v", s, err)
		}
		if got != want {
			t.Errorf("%q: got %v want %v", s, got, want)
		}
	}
}

func TestFunnelDisabledReturnsZeroedSteps(t *testing.T) {
	r := &Runner{enabled: false}
	out, err := r.Funnel(nil, "site", time.Time{}, time.Time{}, []string{"page:/a", "page:/b"}, "1 day")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Visitors != 0 || out[1].Visitors != 0 {
		t.Errorf("expected two zeroed steps, got %+v", out)
	}
}
