package querycore

import (
	"context"
	"fmt"
)

// BreakdownDimensions is the closed enum of columns a breakdown may group
// by (spec §4.8). Only a name drawn from this set is ever interpolated
// as a column reference.
var BreakdownDimensions = map[string]bool{
	"pathname":        true,
	"referrer_source": true,
	"browser":         true,
	"os":              true,
	"device_type":     true,
	"country_code":    true,
}

// BreakdownRow is one grouped value and its counts.
type BreakdownRow struct {
	Value     string `json:"value"`
	Visitors  int64  `json:"visitors"`
	Pageviews int64  `json:"pageviews"`
}

const defaultBreakdownLimit = 10

// Breakdown groups siteID's events over period by dimension, returning
// the top limit values ordered by visitors descending (spec §4.8).
// dimension must be one of BreakdownDimensions; limit <= 0 uses the
// default of 10.
func (r *Runner) Breakdown(ctx context.Context, siteID, dimension string, period Range, limit int) ([]BreakdownRow, error) {
	if !BreakdownDimensions[dimension] {
		return nil, fmt.Errorf("querycore: unknown breakdown dimension %q", dimension)
	}
	if limit <= 0 {
		limit = defaultBreakdownLimit
	}

	key := fmt.Sprintf("breakdown:%s:%s:%s:%s:%d", siteID, dimension, period.startLiteral(), period.endLiteral(), limit)
	return withCache(r.cache, key, func() ([]BreakdownRow, error) {
		query := fmt.Sprintf(
			`SELECT COALESCE(%s, '(unknown)') AS value, COUNT(DISTINCT visitor_id) AS visitors, SUM(CASE WHEN event_name = 'pageview' THEN 1 ELSE 0 END) AS pageviews
			 FROM events_all
			 WHERE site_id = %s AND timestamp >= %s AND timestamp < %s
			 GROUP BY value
			 ORDER BY visitors DESC, value ASC
			 LIMIT %d`,
			dimension, quoteSiteID(siteID), timeLiteral(period.startLiteral()), timeLiteral(period.endLiteral()), limit,
		)
		rows, err := r.runQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		out := make([]BreakdownRow, 0, len(rows))
		for _, row := range rows {
			value, _ := row[0].(string)
			out = append(out, BreakdownRow{
				Value:     value,
				Visitors:  asInt64(row[1]),
				Pageviews: asInt64(row[2]),
			})
		}
		return out, nil
	})
}
