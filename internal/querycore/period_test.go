package querycore

import (
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func TestNormalizePeriodDay(t *testing.T) {
	r, err := NormalizePeriod("day", "", "", fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(want) || !r.End.Equal(want.AddDate(0, 0, 1)) {
		t.Errorf("got %v..%v", r.Start, r.End)
	}
	if r.Granularity() != "hour" {
		t.Errorf("expected hour granularity for day period")
	}
}

func TestNormalizePeriod7d(t *testing.T) {
	r, err := NormalizePeriod("7d", "", "", fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if r.End.Sub(r.Start) != 7*24*time.Hour {
		t.Errorf("expected a 7 day span, got %v", r.End.Sub(r.Start))
	}
	if r.Granularity() != "day" {
		t.Errorf("expected day granularity for 7d period")
	}
}

func TestNormalizePeriodExplicitDates(t *testing.T) {
	r, err := NormalizePeriod("", "2024-01-01", "2024-01-03", fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !r.Start.Equal(want) {
		t.Errorf("got start %v", r.Start)
	}
	wantEnd := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	if !r.End.Equal(wantEnd) {
		t.Errorf("got end %v want %v (end_date should be inclusive)", r.End, wantEnd)
	}
}

func TestNormalizePeriodRejectsUnknown(t *testing.T) {
	if _, err := NormalizePeriod("bogus", "", "", fixedNow); err == nil {
		t.Error("expected an error for an unknown period")
	}
}

func TestNormalizePeriodRejectsPartialExplicitDates(t *testing.T) {
	if _, err := NormalizePeriod("", "2024-01-01", "", fixedNow); err == nil {
		t.Error("expected an error when only start_date is given")
	}
}
