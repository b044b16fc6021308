package behavioral

import (
	"context"
	"time"
)

// sessionGap is the inactivity gap that splits one visitor's events into
// separate sessions (spec §4.9.1).
const sessionGap = 30 * time.Minute

// SessionMetrics is the response shape for /api/stats/sessions.
type SessionMetrics struct {
	TotalSessions          int64   `json:"total_sessions"`
	AvgSessionDurationSecs float64 `json:"avg_session_duration_secs"`
	AvgPagesPerSession     float64 `json:"avg_pages_per_session"`
}

// Sessions groups siteID's events into sessions of at most sessionGap
// inactivity per visitor and reports their aggregate shape.
func (r *Runner) Sessions(ctx context.Context, siteID string, start, end time.Time) (SessionMetrics, error) {
	if !r.enabled {
		return SessionMetrics{}, nil
	}
	rows, err := r.fetchEvents(ctx, siteID, start, end)
	if err != nil {
		return SessionMetrics{}, err
	}
	return computeSessionMetrics(rows), nil
}

// computeSessionMetrics is Sessions' per-row aggregation, split out so it
// can be exercised directly against a fixed row set in tests.
func computeSessionMetrics(rows []eventRow) SessionMetrics {
	var totalSessions int64
	var totalDuration float64
	var totalPages int64

	for _, visitorRows := range groupByVisitor(rows) {
		sessionStart := visitorRows[0].Timestamp
		sessionEnd := visitorRows[0].Timestamp
		sessionPages := pageCount(visitorRows[0])

		flush := func() {
			totalSessions++
			totalDuration += sessionEnd.Sub(sessionStart).Seconds()
			totalPages += sessionPages
		}

		for _, row := range visitorRows[1:] {
			if row.Timestamp.Sub(sessionEnd) > sessionGap {
				flush()
				sessionStart = row.Timestamp
				sessionEnd = row.Timestamp
				sessionPages = 0
			}
			sessionEnd = row.Timestamp
			sessionPages += pageCount(row)
		}
		flush()
	}

	if totalSessions == 0 {
		return SessionMetrics{}
	}
	return SessionMetrics{
		TotalSessions:          totalSessions,
		AvgSessionDurationSecs: totalDuration / float64(totalSessions),
		AvgPagesPerSession:     float64(totalPages) / float64(totalSessions),
	}
}

func pageCount(row eventRow) int64 {
	if row.EventName == "pageview" {
		return 1
	}
	return 0
}
