package safety

import "testing"

func TestIsSafePathComponent(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"..", false},
		{"a/b", false},
		{"a\\b", false},
		{"a\x00b", false},
		{"site1", true},
		{"2024-01-15", true},
	}
	for _, c := range cases {
		if got := IsSafePathComponent(c.in); got != c.want {
			t.Errorf("IsSafePathComponent(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	long := make([]byte, 257)
	for i := range long {
		long[i] = 'a'
	}
	if IsSafePathComponent(string(long)) {
		t.Errorf("expected length>256 to be unsafe")
	}
}

func TestIsSafeInterval(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1 day", true},
		{"7 days", true},
		{"365 days", true},
		{"366 days", false},
		{"0 days", false},
		{"1 fortnight", false},
		{"1;DROP TABLE events", false},
		{"1 day; DROP TABLE events", false},
	}
	for _, c := range cases {
		if got := IsSafeInterval(c.in); got != c.want {
			t.Errorf("IsSafeInterval(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestEscapeCSVField(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello", `"hello"`},
		{"=SUM(A1)", `"'=SUM(A1)"`},
		{`he said "hi"`, `"he said ""hi"""`},
		{"+1", `"'+1"`},
	}
	for _, c := range cases {
		if got := EscapeCSVField(c.in); got != c.want {
			t.Errorf("EscapeCSVField(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestQuoteLiteral(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"O'Brien", "O''Brien"},
		{"1' OR '1'='1", "1'' OR ''1''=''1"},
	}
	for _, c := range cases {
		if got := QuoteLiteral(c.in); got != c.want {
			t.Errorf("QuoteLiteral(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestConstantTimeEq(t *testing.T) {
	if !ConstantTimeEq([]byte("abc"), []byte("abc")) {
		t.Errorf("expected equal")
	}
	if ConstantTimeEq([]byte("abc"), []byte("abcd")) {
		t.Errorf("expected length mismatch to be unequal")
	}
	if ConstantTimeEq([]byte("abc"), []byte("abd")) {
		t.Errorf("expected mismatch")
	}
}
