package visitorid

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeterministic(t *testing.T) {
	d := New("secret")
	a := d.Derive("1.1.1.1", "ua", date("2024-01-15"))
	b := d.Derive("1.1.1.1", "ua", date("2024-01-15"))
	if a != b {
		t.Fatalf("expected deterministic output, got %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestDailyRotation(t *testing.T) {
	d := New("secret")
	a := d.Derive("1.1.1.1", "ua", date("2024-01-15"))
	b := d.Derive("1.1.1.1", "ua", date("2024-01-16"))
	if a == b {
		t.Fatalf("expected different ids across days")
	}
}

func TestIPIndependence(t *testing.T) {
	d := New("secret")
	a := d.Derive("1.1.1.1", "ua", date("2024-01-15"))
	b := d.Derive("2.2.2.2", "ua", date("2024-01-15"))
	if a == b {
		t.Fatalf("expected different ids for different ips")
	}
}

func TestSecretIndependence(t *testing.T) {
	a := New("secret-a").Derive("1.1.1.1", "ua", date("2024-01-15"))
	b := New("secret-b").Derive("1.1.1.1", "ua", date("2024-01-15"))
	if a == b {
		t.Fatalf("expected different ids for different secrets")
	}
}
