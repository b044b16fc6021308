package querycore

import (
	"context"
	"fmt"
)

// TimeseriesPoint is one bucket of the timeseries response.
type TimeseriesPoint struct {
	Date      string `json:"date"`
	Visitors  int64  `json:"visitors"`
	Pageviews int64  `json:"pageviews"`
}

// Timeseries buckets siteID's events over period by hour (single-day
// periods) or by day (spec §4.8). Bucket labels are produced with
// DATE_FORMAT rather than relying on engine-specific date-to-string
// coercion (spec L6).
func (r *Runner) Timeseries(ctx context.Context, siteID string, period Range) ([]TimeseriesPoint, error) {
	bucketFmt := "%Y-%m-%d"
	if period.Granularity() == "hour" {
		bucketFmt = "%Y-%m-%d %H:00:00"
	}

	key := fmt.Sprintf("timeseries:%s:%s:%s:%s", siteID, bucketFmt, period.startLiteral(), period.endLiteral())
	return withCache(r.cache, key, func() ([]TimeseriesPoint, error) {
		query := fmt.Sprintf(
			`SELECT DATE_FORMAT(timestamp, '%s') AS bucket, COUNT(DISTINCT visitor_id) AS visitors, SUM(CASE WHEN event_name = 'pageview' THEN 1 ELSE 0 END) AS pageviews
			 FROM events_all
			 WHERE site_id = %s AND timestamp >= %s AND timestamp < %s
			 GROUP BY bucket
			 ORDER BY bucket`,
			bucketFmt, quoteSiteID(siteID), timeLiteral(period.startLiteral()), timeLiteral(period.endLiteral()),
		)
		rows, err := r.runQuery(ctx, query)
		if err != nil {
			return nil, err
		}
		out := make([]TimeseriesPoint, 0, len(rows))
		for _, row := range rows {
			date, _ := row[0].(string)
			out = append(out, TimeseriesPoint{
				Date:      date,
				Visitors:  asInt64(row[1]),
				Pageviews: asInt64(row[2]),
			})
		}
		return out, nil
	})
}
