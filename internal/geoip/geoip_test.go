package geoip

import (
	"net"
	"testing"
)

func TestLookupWithNoPathConfiguredReturnsEmpty(t *testing.T) {
	r := Open("")
	got := r.Lookup(net.ParseIP("81.2.69.142"))
	if got != (Info{}) {
		t.Errorf("expected an empty Info with no database configured, got %+v", got)
	}
}

func TestLookupWithUnreadableFileReturnsEmpty(t *testing.T) {
	r := Open("/nonexistent/city.mmdb")
	got := r.Lookup(net.ParseIP("81.2.69.142"))
	if got != (Info{}) {
		t.Errorf("expected an empty Info for an unopenable database, got %+v", got)
	}
}

func TestLookupNilIPReturnsEmpty(t *testing.T) {
	r := Open("")
	if got := r.Lookup(nil); got != (Info{}) {
		t.Errorf("expected an empty Info for a nil IP, got %+v", got)
	}
}
