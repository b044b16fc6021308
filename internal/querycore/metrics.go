package querycore

import (
	"context"
	"fmt"
)

// MainResult is the response shape for /api/stats/main.
type MainResult struct {
	UniqueVisitors       int64   `json:"unique_visitors"`
	TotalPageviews       int64   `json:"total_pageviews"`
	BounceRate           float64 `json:"bounce_rate"`
	AvgVisitDurationSecs float64 `json:"avg_visit_duration_secs"`
	PagesPerVisit        float64 `json:"pages_per_visit"`
}

// Main computes the core metrics for siteID over r (spec §4.8).
// bounce_rate and avg_visit_duration_secs require the behavioral
// extension and are returned as 0.0 here regardless of whether it is
// enabled — callers needing them use Sessions (spec §9, decision 1).
func (r *Runner) Main(ctx context.Context, siteID string, period Range) (MainResult, error) {
	key := fmt.Sprintf("main:%s:%s:%s", siteID, period.startLiteral(), period.endLiteral())
	return withCache(r.cache, key, func() (MainResult, error) {
		query := fmt.Sprintf(
			`SELECT COUNT(DISTINCT visitor_id) AS uv, SUM(CASE WHEN event_name = 'pageview' THEN 1 ELSE 0 END) AS pv
			 FROM events_all
			 WHERE site_id = %s AND timestamp >= %s AND timestamp < %s`,
			quoteSiteID(siteID), timeLiteral(period.startLiteral()), timeLiteral(period.endLiteral()),
		)
		rows, err := r.runQuery(ctx, query)
		if err != nil {
			return MainResult{}, err
		}
		if len(rows) == 0 {
			return MainResult{}, nil
		}
		uv := asInt64(rows[0][0])
		pv := asInt64(rows[0][1])
		visitors := uv
		if visitors < 1 {
			visitors = 1
		}
		return MainResult{
			UniqueVisitors: uv,
			TotalPageviews: pv,
			PagesPerVisit:  float64(pv) / float64(visitors),
		}, nil
	})
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	default:
		return 0
	}
}
