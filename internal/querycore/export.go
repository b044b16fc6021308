package querycore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mallardmetrics/mallard/internal/safety"
)

// ExportRow is one day's aggregate for /api/stats/export.
type ExportRow struct {
	Date      string `json:"date"`
	Visitors  int64  `json:"visitors"`
	Pageviews int64  `json:"pageviews"`
	TopPage   string `json:"top_page"`
	TopSource string `json:"top_source"`
}

// Export computes one row per UTC day in period for siteID. top_page and
// top_source are each that day's single highest-visitor breakdown value,
// fetched with a one-day-scoped Breakdown call per day — daily aggregate
// exports are not a latency-sensitive path, so the extra round trips are
// an acceptable simplicity/consistency trade against hand-rolling a
// window-function query this engine's exact support can't be verified
// for without compiling against it.
func (r *Runner) Export(ctx context.Context, siteID string, period Range) ([]ExportRow, error) {
	dayPoints, err := r.dailyPoints(ctx, siteID, period)
	if err != nil {
		return nil, err
	}

	out := make([]ExportRow, 0, len(dayPoints))
	for _, p := range dayPoints {
		dayStart, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("querycore: export: unexpected bucket label %q: %w", p.Date, err)
		}
		dayRange := Range{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

		topPage := ""
		if rows, err := r.Breakdown(ctx, siteID, "pathname", dayRange, 1); err == nil && len(rows) > 0 {
			topPage = rows[0].Value
		}
		topSource := ""
		if rows, err := r.Breakdown(ctx, siteID, "referrer_source", dayRange, 1); err == nil && len(rows) > 0 {
			topSource = rows[0].Value
		}

		out = append(out, ExportRow{
			Date:      p.Date,
			Visitors:  p.Visitors,
			Pageviews: p.Pageviews,
			TopPage:   topPage,
			TopSource: topSource,
		})
	}
	return out, nil
}

// dailyPoints is Timeseries forced to day granularity, regardless of
// period's own native bucket size — export rows are always one per day.
func (r *Runner) dailyPoints(ctx context.Context, siteID string, period Range) ([]TimeseriesPoint, error) {
	query := fmt.Sprintf(
		`SELECT DATE_FORMAT(timestamp, '%%Y-%%m-%%d') AS bucket, COUNT(DISTINCT visitor_id) AS visitors, SUM(CASE WHEN event_name = 'pageview' THEN 1 ELSE 0 END) AS pageviews
		 FROM events_all
		 WHERE site_id = %s AND timestamp >= %s AND timestamp < %s
		 GROUP BY bucket
		 ORDER BY bucket`,
		quoteSiteID(siteID), timeLiteral(period.startLiteral()), timeLiteral(period.endLiteral()),
	)
	rows, err := r.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]TimeseriesPoint, 0, len(rows))
	for _, row := range rows {
		date, _ := row[0].(string)
		out = append(out, TimeseriesPoint{Date: date, Visitors: asInt64(row[1]), Pageviews: asInt64(row[2])})
	}
	return out, nil
}

// WriteCSV serializes rows as the export CSV (spec §6.2): header
// date,visitors,pageviews,top_page,top_source, with every field run
// through safety.EscapeCSVField — which both quotes the field and guards
// against spreadsheet-formula injection (spec §4.15, P10) — so fields are
// joined directly with commas rather than through a second quoting pass.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	if _, err := io.WriteString(w, "date,visitors,pageviews,top_page,top_source\r\n"); err != nil {
		return err
	}
	for _, row := range rows {
		fields := []string{
			safety.EscapeCSVField(row.Date),
			safety.EscapeCSVField(strconv.FormatInt(row.Visitors, 10)),
			safety.EscapeCSVField(strconv.FormatInt(row.Pageviews, 10)),
			safety.EscapeCSVField(row.TopPage),
			safety.EscapeCSVField(row.TopSource),
		}
		if _, err := io.WriteString(w, strings.Join(fields, ",")+"\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON serializes rows as the export JSON body.
func WriteJSON(w io.Writer, rows []ExportRow) error {
	return json.NewEncoder(w).Encode(rows)
}
