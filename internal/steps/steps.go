// Package steps parses funnel/sequence step tokens into SQL filter
// fragments with quote-escaped literal values (spec §4.14).
package steps

import (
	"fmt"
	"strings"

	"github.com/mallardmetrics/mallard/internal/safety"
)

// Filter is a ready-to-interpolate SQL boolean expression over events_all,
// plus a human label for the step it came from. Only the literal column
// names "pathname"/"event_name" are interpolated; the value is always
// quote-escaped via safety.QuoteLiteral, never passed through verbatim.
//
// Column and Value carry the same condition in structured form, for
// callers (internal/behavioral) that evaluate steps against already
// fetched rows in Go instead of asking the engine to filter them.
type Filter struct {
	SQL    string
	Label  string
	Column string
	Value  string
}

// Parse turns one funnel/sequence step token into a Filter.
//
//	page:<path>   -> pathname = '<path>'
//	event:<name>  -> event_name = '<name>'
//
// Anything else is rejected (spec §4.14's "anything else -> reject").
func Parse(token string) (Filter, error) {
	switch {
	case strings.HasPrefix(token, "page:"):
		path := strings.TrimPrefix(token, "page:")
		if path == "" {
			return Filter{}, fmt.Errorf("steps: empty page path in %q", token)
		}
		return Filter{
			SQL:    fmt.Sprintf("pathname = '%s'", safety.QuoteLiteral(path)),
			Label:  token,
			Column: "pathname",
			Value:  path,
		}, nil
	case strings.HasPrefix(token, "event:"):
		name := strings.TrimPrefix(token, "event:")
		if name == "" {
			return Filter{}, fmt.Errorf("steps: empty event name in %q", token)
		}
		return Filter{
			SQL:    fmt.Sprintf("event_name = '%s'", safety.QuoteLiteral(name)),
			Label:  token,
			Column: "event_name",
			Value:  name,
		}, nil
	default:
		return Filter{}, fmt.Errorf("steps: invalid step token %q, want page:<path> or event:<name>", token)
	}
}

// ParseAll parses every token in order, failing on the first invalid one.
func ParseAll(tokens []string) ([]Filter, error) {
	out := make([]Filter, 0, len(tokens))
	for _, t := range tokens {
		f, err := Parse(t)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
