package querycore

import (
	"fmt"
	"time"
)

// Range is a half-open UTC interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// NormalizePeriod resolves period/startDate/endDate into a concrete UTC
// range (spec §4.8 "period normalization"). Explicit dates win over
// period when given.
func NormalizePeriod(period, startDate, endDate string, now time.Time) (Range, error) {
	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return Range{}, fmt.Errorf("querycore: start_date and end_date must be given together")
		}
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return Range{}, fmt.Errorf("querycore: invalid start_date: %w", err)
		}
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return Range{}, fmt.Errorf("querycore: invalid end_date: %w", err)
		}
		start = start.UTC()
		end = end.UTC().AddDate(0, 0, 1)
		if !end.After(start) {
			return Range{}, fmt.Errorf("querycore: end_date must not be before start_date")
		}
		return Range{Start: start, End: end}, nil
	}

	today := now.UTC().Truncate(24 * time.Hour)
	tomorrow := today.AddDate(0, 0, 1)

	switch period {
	case "", "day", "today":
		return Range{Start: today, End: tomorrow}, nil
	case "7d":
		return Range{Start: today.AddDate(0, 0, -6), End: tomorrow}, nil
	case "30d":
		return Range{Start: today.AddDate(0, 0, -29), End: tomorrow}, nil
	case "90d":
		return Range{Start: today.AddDate(0, 0, -89), End: tomorrow}, nil
	default:
		return Range{}, fmt.Errorf("querycore: unknown period %q", period)
	}
}

// Granularity returns "hour" for single-day ranges (day/today) and "day"
// otherwise (spec §4.8).
func (r Range) Granularity() string {
	if r.End.Sub(r.Start) <= 24*time.Hour {
		return "hour"
	}
	return "day"
}

func (r Range) startLiteral() string {
	return r.Start.Format("2006-01-02 15:04:05")
}

func (r Range) endLiteral() string {
	return r.End.Format("2006-01-02 15:04:05")
}
