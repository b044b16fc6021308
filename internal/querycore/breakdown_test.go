package querycore

import "testing"

func TestBreakdownDimensionsClosedEnum(t *testing.T) {
	want := []string{"pathname", "referrer_source", "browser", "os", "device_type", "country_code"}
	for _, d := range want {
		if !BreakdownDimensions[d] {
			t.Errorf("expected %q to be a valid breakdown dimension", d)
		}
	}
	if BreakdownDimensions["site_id"] {
		t.Error("site_id must not be a valid breakdown dimension")
	}
	if BreakdownDimensions["'; DROP TABLE events_all; --"] {
		t.Error("injection attempt must not be accepted as a dimension")
	}
}
