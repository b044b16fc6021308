// Package safety implements the privacy and injection-safety invariants
// that gate every value before it reaches a file path or a query string
// (spec §4.15, properties P9-P11).
package safety

import (
	"crypto/subtle"
	"regexp"
	"strconv"
	"strings"
)

const maxPathComponent = 256

// IsSafePathComponent returns true iff s is non-empty, at most 256
// characters, and contains none of "..", "/", "\", or NUL.
func IsSafePathComponent(s string) bool {
	if s == "" || len(s) > maxPathComponent {
		return false
	}
	if strings.Contains(s, "..") || strings.ContainsAny(s, "/\\") {
		return false
	}
	return !strings.ContainsRune(s, 0)
}

var intervalRe = regexp.MustCompile(`^(\d+)\s+(second|minute|hour|day|week|month)s?$`)

// IsSafeInterval validates a funnel window string against
// `^\d+\s+(second|minute|hour|day|week|month)s?$` with the numeric part
// bounded to [1, 365] (spec §4.9.2).
func IsSafeInterval(s string) bool {
	m := intervalRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return n >= 1 && n <= 365
}

// EscapeCSVField doubles embedded double quotes and, if the field begins
// with =, +, -, or @ (a spreadsheet formula trigger), prepends a single
// quote before wrapping the whole field in double quotes (spec §4.15, P10).
func EscapeCSVField(s string) string {
	if len(s) > 0 {
		switch s[0] {
		case '=', '+', '-', '@':
			s = "'" + s
		}
	}
	s = strings.ReplaceAll(s, `"`, `""`)
	return `"` + s + `"`
}

// ConstantTimeEq reports whether a and b are equal, taking time independent
// of where they first differ — used for API-key comparisons.
func ConstantTimeEq(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// QuoteLiteral doubles every single quote in s so it is safe to splice into
// a SQL string literal delimited by single quotes.
func QuoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
