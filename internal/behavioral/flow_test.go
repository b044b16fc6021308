package behavioral

import (
	"testing"
	"time"
)

func TestFlowRejectsEmptyPage(t *testing.T) {
	r := &Runner{enabled: true}
	if _, err := r.Flow(nil, "site", time.Time{}, time.Time{}, ""); err == nil {
		t.Error("expected rejection of an empty target page")
	}
}

func TestFlowDisabledReturnsEmpty(t *testing.T) {
	r := &Runner{enabled: false}
	got, err := r.Flow(nil, "site", time.Time{}, time.Time{}, "/pricing")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected a nil result when disabled, got %+v", got)
	}
}
