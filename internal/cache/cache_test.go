package cache

import (
	"testing"
	"time"
)

func TestDisabledCacheNeverStores(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	c.Set("key", 42)
	if _, ok := c.Get("key"); ok {
		t.Error("expected disabled cache to never return a value")
	}
}

func TestEnabledCacheRoundTrips(t *testing.T) {
	c, err := New(time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	c.Set("key", "value")
	c.ristretto.Wait()

	v, ok := c.Get("key")
	if !ok {
		t.Fatal("expected cached value to be present")
	}
	if v.(string) != "value" {
		t.Errorf("got %v want value", v)
	}
}

func TestInvalidateClearsEntries(t *testing.T) {
	c, err := New(time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	c.Set("key", "value")
	c.ristretto.Wait()
	c.Invalidate()

	if _, ok := c.Get("key"); ok {
		t.Error("expected invalidate to clear cached entries")
	}
}
