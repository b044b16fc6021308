package behavioral

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/mallardmetrics/mallard/internal/safety"
	"github.com/mallardmetrics/mallard/internal/steps"
)

// FunnelStep is one stage of a funnel result.
type FunnelStep struct {
	Step     int   `json:"step"`
	Visitors int64 `json:"visitors"`
}

var intervalRe = regexp.MustCompile(`^(\d+)\s+(second|minute|hour|day|week|month)s?$`)

// intervalDuration parses an already-validated window interval string
// (safety.IsSafeInterval) into a time.Duration. Month is treated as 30
// days; the grammar has no finer unit for it.
func intervalDuration(s string) (time.Duration, error) {
	m := intervalRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("behavioral: invalid window interval %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, err
	}
	unit := map[string]time.Duration{
		"second": time.Second,
		"minute": time.Minute,
		"hour":   time.Hour,
		"day":    24 * time.Hour,
		"week":   7 * 24 * time.Hour,
		"month":  30 * 24 * time.Hour,
	}[m[2]]
	return time.Duration(n) * unit, nil
}

// Funnel reports, for each step index 1..len(stepTokens), how many
// visitors reached at least that step in order within window (spec
// §4.9.2). stepTokens are parsed with internal/steps; window must satisfy
// safety.IsSafeInterval before this is called.
func (r *Runner) Funnel(ctx context.Context, siteID string, start, end time.Time, stepTokens []string, window string) ([]FunnelStep, error) {
	n := len(stepTokens)
	if n == 0 {
		return nil, nil
	}
	if !r.enabled {
		out := make([]FunnelStep, n)
		for i := range out {
			out[i] = FunnelStep{Step: i + 1, Visitors: 0}
		}
		return out, nil
	}
	if !safety.IsSafeInterval(window) {
		return nil, fmt.Errorf("behavioral: invalid window interval %q", window)
	}
	filters, err := steps.ParseAll(stepTokens)
	if err != nil {
		return nil, err
	}
	windowDur, err := intervalDuration(window)
	if err != nil {
		return nil, err
	}

	rows, err := r.fetchEvents(ctx, siteID, start, end)
	if err != nil {
		return nil, err
	}

	reached := make([]int64, n+1)
	for _, visitorRows := range groupByVisitor(rows) {
		level := funnelLevel(visitorRows, filters, windowDur)
		for step := 1; step <= level; step++ {
			reached[step]++
		}
	}

	out := make([]FunnelStep, n)
	for i := 0; i < n; i++ {
		out[i] = FunnelStep{Step: i + 1, Visitors: reached[i+1]}
	}
	return out, nil
}

// funnelLevel walks one visitor's events (already time-ordered) and
// returns the highest step reached, where step i+1 can only be reached
// from step i's event if it occurs no later than windowDur after the
// first matched step's event (the window_funnel semantics in spec §4.9.2
// / original_source's DuckDB window_funnel usage).
func funnelLevel(rows []eventRow, filters []steps.Filter, windowDur time.Duration) int {
	level := 0
	var windowStart time.Time
	for _, row := range rows {
		if level == len(filters) {
			break
		}
		if !matches(row, filters[level]) {
			continue
		}
		if level == 0 {
			windowStart = row.Timestamp
		} else if row.Timestamp.Sub(windowStart) > windowDur {
			continue
		}
		level++
	}
	return level
}

func matches(row eventRow, f steps.Filter) bool {
	switch f.Column {
	case "pathname":
		return row.Pathname == f.Value
	case "event_name":
		return row.EventName == f.Value
	default:
		return false
	}
}
