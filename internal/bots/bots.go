// Package bots implements the ingest-time bot filter (SPEC_FULL §4.17).
package bots

import "strings"

// tokens is the fixed, case-insensitive substring list matched against an
// incoming request's User-Agent.
var tokens = []string{
	"bot", "spider", "crawl", "slurp",
	"facebookexternalhit", "pingdom", "uptimerobot",
	"headlesschrome", "phantomjs",
	"curl/", "wget/", "python-requests", "go-http-client",
}

// IsBot reports whether userAgent matches a known bot/crawler/monitoring
// pattern. An empty UA is never treated as a bot.
func IsBot(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	lower := strings.ToLower(userAgent)
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
