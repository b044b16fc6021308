package behavioral

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// RetentionCohort is one weekly cohort's retention row.
type RetentionCohort struct {
	CohortDate string `json:"cohort_date"`
	Retained   []bool `json:"retained"`
}

// Retention groups siteID's visitors into weekly cohorts by the week of
// their first observed event and reports, for each of the weeks
// following, whether any member of the cohort was seen again (spec
// §4.9.3). weeks must be in [1, 52].
func (r *Runner) Retention(ctx context.Context, siteID string, weeks int) ([]RetentionCohort, error) {
	if weeks < 1 || weeks > 52 {
		return nil, fmt.Errorf("behavioral: weeks must be in [1, 52], got %d", weeks)
	}
	if !r.enabled {
		return nil, nil
	}

	rows, err := r.fetchAllEvents(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cohorts := make(map[time.Time][]bool)
	for _, visitorRows := range groupByVisitor(rows) {
		firstSeen := visitorRows[0].Timestamp
		cohortWeek := startOfWeek(firstSeen)
		retained, ok := cohorts[cohortWeek]
		if !ok {
			retained = make([]bool, weeks)
			retained[0] = true
			cohorts[cohortWeek] = retained
		}
		for _, row := range visitorRows {
			offset := int(row.Timestamp.Sub(cohortWeek).Hours() / (24 * 7))
			if offset > 0 && offset < weeks {
				retained[offset] = true
			}
		}
	}

	dates := make([]time.Time, 0, len(cohorts))
	for d := range cohorts {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]RetentionCohort, 0, len(dates))
	for _, d := range dates {
		out = append(out, RetentionCohort{
			CohortDate: d.Format("2006-01-02"),
			Retained:   cohorts[d],
		})
	}
	return out, nil
}

// startOfWeek truncates t to midnight UTC on the Monday of its week.
func startOfWeek(t time.Time) time.Time {
	t = t.UTC().Truncate(24 * time.Hour)
	offset := (int(t.Weekday()) + 6) % 7 // days since Monday
	return t.AddDate(0, 0, -offset)
}
