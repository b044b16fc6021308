package steps

import "testing"

func TestParsePage(t *testing.T) {
	f, err := Parse("page:/pricing")
	if err != nil {
		t.Fatal(err)
	}
	if f.SQL != "pathname = '/pricing'" {
		t.Errorf("got %q", f.SQL)
	}
}

func TestParseEvent(t *testing.T) {
	f, err := Parse("event:signup")
	if err != nil {
		t.Fatal(err)
	}
	if f.SQL != "event_name = 'signup'" {
		t.Errorf("got %q", f.SQL)
	}
}

func TestParseEscapesQuotes(t *testing.T) {
	f, err := Parse("page:/o'brien")
	if err != nil {
		t.Fatal(err)
	}
	if f.SQL != "pathname = '/o''brien'" {
		t.Errorf("got %q", f.SQL)
	}
}

func TestParseRejectsUnknownPrefix(t *testing.T) {
	if _, err := Parse("step:foo"); err == nil {
		t.Error("expected rejection of unrecognized step token")
	}
}

func TestParseRejectsEmptyValue(t *testing.T) {
	if _, err := Parse("page:"); err == nil {
		t.Error("expected rejection of empty page path")
	}
	if _, err := Parse("event:"); err == nil {
		t.Error("expected rejection of empty event name")
	}
}

func TestParseAllStopsAtFirstError(t *testing.T) {
	_, err := ParseAll([]string{"page:/a", "bogus"})
	if err == nil {
		t.Error("expected ParseAll to propagate the first invalid token's error")
	}
}
