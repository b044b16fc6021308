// Package referrer classifies a referrer URL's source and extracts UTM
// campaign parameters (spec §4.3).
package referrer

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

const maxLookupLabels = 5

// ParseSource classifies referrerURL into a human-readable source name
// ("Google", "Twitter", ...), or "" if unrecognized. The hostname is
// matched exactly against the known-sources table — never by substring —
// walking from the full (trimmed) hostname down to progressively shorter
// label suffixes so that e.g. "news.google.com" still resolves via
// "google.com" without "t.co" ever matching inside "reddit.com".
func ParseSource(referrerURL string) string {
	host := hostOf(referrerURL)
	if host == "" {
		return ""
	}
	return lookupHost(host)
}

func hostOf(referrerURL string) string {
	u, err := url.Parse(referrerURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Hostname()
}

// lookupHost tries the full (www.-trimmed) host first, then progressively
// drops the leftmost label — "news.google.com" falls through to
// "google.com" — never walking past the registrable domain (its public
// suffix plus one label, per golang.org/x/net/publicsuffix) and never
// considering more than maxLookupLabels to begin with. Every candidate is
// matched exactly against sources; no candidate is ever a substring match.
func lookupHost(host string) string {
	host = strings.TrimPrefix(host, "www.")
	labels := strings.Split(host, ".")
	if len(labels) > maxLookupLabels {
		labels = labels[len(labels)-maxLookupLabels:]
	}
	floor := registrableLabelCount(host)
	for len(labels) >= floor {
		candidate := strings.Join(labels, ".")
		if m, ok := sources[candidate]; ok {
			return m
		}
		labels = labels[1:]
	}
	return ""
}

// registrableLabelCount returns how many labels make up host's registrable
// domain (e.g. 2 for "google.com", 2 for "bbc.co.uk" since "co.uk" is a
// single public suffix), the floor lookupHost must not walk past. It falls
// back to 2 when publicsuffix can't parse host (e.g. a bare single-label
// hostname), matching the previous fixed-constant behavior.
func registrableLabelCount(host string) int {
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return 2
	}
	return strings.Count(root, ".") + 1
}

// UTMParams holds the five standard UTM campaign-tracking fields.
type UTMParams struct {
	Source   string
	Medium   string
	Campaign string
	Content  string
	Term     string
}

// ParseUTM extracts UTM fields from rawURL's query string. Missing keys
// yield empty values; this never errors.
func ParseUTM(rawURL string) UTMParams {
	u, err := url.Parse(rawURL)
	if err != nil {
		return UTMParams{}
	}
	q := u.Query()
	return UTMParams{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
		Content:  q.Get("utm_content"),
		Term:     q.Get("utm_term"),
	}
}
