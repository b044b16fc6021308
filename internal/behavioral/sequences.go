package behavioral

import (
	"context"
	"fmt"
	"time"

	"github.com/mallardmetrics/mallard/internal/steps"
)

// SequenceResult is the response shape for /api/stats/sequences.
type SequenceResult struct {
	ConvertingVisitors int64   `json:"converting_visitors"`
	TotalVisitors      int64   `json:"total_visitors"`
	ConversionRate     float64 `json:"conversion_rate"`
}

// buildPattern constructs the sequence_match pattern from the step count
// alone — `(?1).*(?2)...(?N)` — never from a caller-supplied string (spec
// §4.9.4). It exists to document the pattern this query would
// hand the behavioral extension if it were enabled; the actual match is
// computed below without it.
func buildPattern(n int) string {
	pattern := ""
	for i := 1; i <= n; i++ {
		pattern += fmt.Sprintf("(?%d)", i)
		if i < n {
			pattern += ".*"
		}
	}
	return pattern
}

// Sequences reports how many of siteID's visitors in [start, end)
// produced an ordered (not necessarily contiguous, unwindowed) subsequence
// of events matching stepTokens in order (spec §4.9.4). stepTokens must
// have length >= 2.
func (r *Runner) Sequences(ctx context.Context, siteID string, start, end time.Time, stepTokens []string) (SequenceResult, error) {
	if len(stepTokens) < 2 {
		return SequenceResult{}, fmt.Errorf("behavioral: sequences requires at least 2 steps, got %d", len(stepTokens))
	}
	if !r.enabled {
		return SequenceResult{}, nil
	}
	filters, err := steps.ParseAll(stepTokens)
	if err != nil {
		return SequenceResult{}, err
	}
	_ = buildPattern(len(filters))

	rows, err := r.fetchEvents(ctx, siteID, start, end)
	if err != nil {
		return SequenceResult{}, err
	}

	byVisitor := groupByVisitor(rows)
	total := int64(len(byVisitor))
	var converting int64
	for _, visitorRows := range byVisitor {
		if sequenceMatches(visitorRows, filters) {
			converting++
		}
	}

	var rate float64
	if total > 0 {
		rate = float64(converting) / float64(total)
	}
	return SequenceResult{
		ConvertingVisitors: converting,
		TotalVisitors:      total,
		ConversionRate:     rate,
	}, nil
}

// sequenceMatches reports whether rows (time-ordered) contains the
// conditions in filters as an ordered subsequence, with no bound on the
// time or event gap between matches.
func sequenceMatches(rows []eventRow, filters []steps.Filter) bool {
	idx := 0
	for _, row := range rows {
		if idx == len(filters) {
			break
		}
		if matches(row, filters[idx]) {
			idx++
		}
	}
	return idx == len(filters)
}
