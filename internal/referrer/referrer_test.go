package referrer

import "testing"

func TestParseSourceExactMatch(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.google.com/search?q=x", "Google"},
		{"https://t.co/abc123", "Twitter"},
		{"https://old.reddit.com/r/golang", "Reddit"},
		{"https://news.ycombinator.com/item?id=1", "Hacker News"},
		{"", ""},
		{"not a url", ""},
	}
	for _, c := range cases {
		if got := ParseSource(c.in); got != c.want {
			t.Errorf("ParseSource(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseSourceNeverSubstringMatches(t *testing.T) {
	// "reddit.com" contains "t.co" as a substring; must not match Twitter.
	if got := ParseSource("https://reddit.com/r/golang"); got != "Reddit" {
		t.Fatalf("expected Reddit, got %q (substring leak from t.co?)", got)
	}
}

func TestParseUTM(t *testing.T) {
	u := "https://example.com/?utm_source=newsletter&utm_medium=email&utm_campaign=launch"
	p := ParseUTM(u)
	if p.Source != "newsletter" || p.Medium != "email" || p.Campaign != "launch" {
		t.Fatalf("got %+v", p)
	}
	p = ParseUTM("https://example.com/no-query")
	if p != (UTMParams{}) {
		t.Fatalf("expected zero value, got %+v", p)
	}
}
