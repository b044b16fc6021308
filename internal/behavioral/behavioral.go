// Package behavioral implements the advanced analytical queries —
// sessions, funnel, retention, sequences, and flow (spec §4.9).
//
// The embedded engine's sessionize/window_funnel/retention/sequence_match/
// sequence_next_node functions (internal/engine) exist only so their names
// resolve in the SQL catalog; evaluating any of them always errors (see
// internal/engine/functions.go). Every query here instead fetches the raw
// rows it needs from events_all with an ordinary SELECT (values quoted via
// safety.QuoteLiteral, not bound as parameters) and computes
// the window/sequence logic in Go, where it can be unit tested without a
// planner.
package behavioral

import (
	"context"
	"fmt"
	"io"
	"time"

	gosql "github.com/dolthub/go-mysql-server/sql"

	"github.com/mallardmetrics/mallard/internal/engine"
	"github.com/mallardmetrics/mallard/internal/logger"
	"github.com/mallardmetrics/mallard/internal/safety"
)

// Runner executes the behavioral queries against eng. When enabled is
// false, every method returns its documented zero-value default
// immediately, without issuing a query (spec §4.9, §7 ExtensionUnavailable).
type Runner struct {
	eng     *engine.Engine
	enabled bool
}

// New returns a Runner. enabled mirrors config.BehavioralEnabled; the
// disabled case is logged once here rather than per request.
func New(eng *engine.Engine, enabled bool) *Runner {
	if !enabled {
		logger.Get().Warn().Msg("behavioral extension disabled; sessions/funnel/retention/sequences/flow will return empty defaults")
	}
	return &Runner{eng: eng, enabled: enabled}
}

// eventRow is one (visitor_id, timestamp, pathname, event_name) tuple
// fetched from events_all, the shared shape every behavioral query scans.
type eventRow struct {
	VisitorID string
	Timestamp time.Time
	Pathname  string
	EventName string
}

// fetchEvents returns siteID's events in [start, end), ordered by visitor
// and timestamp.
func (r *Runner) fetchEvents(ctx context.Context, siteID string, start, end time.Time) ([]eventRow, error) {
	where := fmt.Sprintf("site_id = %s AND timestamp >= %s AND timestamp < %s",
		quoteLiteral(siteID), quoteLiteral(formatTimestamp(start)), quoteLiteral(formatTimestamp(end)))
	return r.scanEvents(ctx, where)
}

// fetchAllEvents returns every one of siteID's events, with no time bound
// — used by Retention, which anchors each visitor's cohort on their own
// first-seen date rather than a caller-supplied period.
func (r *Runner) fetchAllEvents(ctx context.Context, siteID string) ([]eventRow, error) {
	return r.scanEvents(ctx, fmt.Sprintf("site_id = %s", quoteLiteral(siteID)))
}

func (r *Runner) scanEvents(ctx context.Context, where string) ([]eventRow, error) {
	query := fmt.Sprintf(
		`SELECT visitor_id, timestamp, pathname, event_name
		 FROM events_all
		 WHERE %s
		 ORDER BY visitor_id, timestamp`,
		where,
	)
	rows, err := r.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]eventRow, 0, len(rows))
	for _, row := range rows {
		visitor, _ := row[0].(string)
		pathname, _ := row[2].(string)
		eventName, _ := row[3].(string)
		out = append(out, eventRow{
			VisitorID: visitor,
			Timestamp: asTime(row[1]),
			Pathname:  pathname,
			EventName: eventName,
		})
	}
	return out, nil
}

func (r *Runner) runQuery(ctx context.Context, query string) ([]gosql.Row, error) {
	sqlCtx := engine.NewSessionContext(ctx, engine.DatabaseName)
	_, iter, err := r.eng.Query(sqlCtx, query)
	if err != nil {
		return nil, fmt.Errorf("behavioral: %w", err)
	}
	var rows []gosql.Row
	for {
		row, err := iter.Next(sqlCtx)
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = iter.Close(sqlCtx)
			return nil, fmt.Errorf("behavioral: %w", err)
		}
		rows = append(rows, row)
	}
	if err := iter.Close(sqlCtx); err != nil {
		return nil, fmt.Errorf("behavioral: %w", err)
	}
	return rows, nil
}

// groupByVisitor splits rows (already ordered by visitor_id, timestamp)
// into per-visitor slices, preserving order.
func groupByVisitor(rows []eventRow) map[string][]eventRow {
	out := make(map[string][]eventRow)
	for _, row := range rows {
		out[row.VisitorID] = append(out[row.VisitorID], row)
	}
	return out
}

func asTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func quoteLiteral(s string) string {
	return "'" + safety.QuoteLiteral(s) + "'"
}
