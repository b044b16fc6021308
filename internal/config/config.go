// Package config defines the process configuration surface, loaded from
// command-line flags and environment variables via urfave/cli.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"net"

	"github.com/urfave/cli/v3"

	"github.com/mallardmetrics/mallard/internal/logger"
)

// Options holds every configurable value in the system (spec §6.4).
type Options struct {
	Host                string
	Port                int
	DataDir             string
	Secret              string
	FlushEventCount     int
	FlushIntervalSecs   int
	SiteIDs             []string
	FilterBots          bool
	RetentionDays       int
	ShutdownTimeoutSecs int
	RateLimitPerSite    float64
	CacheTTLSecs        int
	BehavioralEnabled   bool
	GeoIPPath           string
}

// Defaults returns the option set with every field at its documented
// default (spec §6.4).
func Defaults() *Options {
	return &Options{
		Host:                "0.0.0.0",
		Port:                8000,
		DataDir:             "data",
		FlushEventCount:     1000,
		FlushIntervalSecs:   60,
		FilterBots:          true,
		RetentionDays:       0,
		ShutdownTimeoutSecs: 30,
		RateLimitPerSite:    0,
		CacheTTLSecs:        60,
		BehavioralEnabled:   true,
	}
}

// Flags returns the CLI flag set bound to o, following the teacher's
// Destination-bound-flag convention.
func Flags(o *Options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "host", Value: o.Host, Destination: &o.Host, Sources: cli.EnvVars("MALLARD_HOST")},
		&cli.IntFlag{Name: "port", Value: int64(o.Port), Sources: cli.EnvVars("MALLARD_PORT")},
		&cli.StringFlag{Name: "data-dir", Value: o.DataDir, Destination: &o.DataDir, Sources: cli.EnvVars("MALLARD_DATA_DIR")},
		&cli.StringFlag{Name: "secret", Value: o.Secret, Destination: &o.Secret, Sources: cli.EnvVars("MALLARD_SECRET")},
		&cli.IntFlag{Name: "flush-count", Value: int64(o.FlushEventCount), Sources: cli.EnvVars("MALLARD_FLUSH_COUNT")},
		&cli.IntFlag{Name: "flush-interval", Value: int64(o.FlushIntervalSecs), Sources: cli.EnvVars("MALLARD_FLUSH_INTERVAL")},
		&cli.StringSliceFlag{Name: "site-id", Sources: cli.EnvVars("MALLARD_SITE_IDS")},
		&cli.BoolFlag{Name: "filter-bots", Value: o.FilterBots, Destination: &o.FilterBots, Sources: cli.EnvVars("MALLARD_FILTER_BOTS")},
		&cli.IntFlag{Name: "retention-days", Value: int64(o.RetentionDays), Sources: cli.EnvVars("MALLARD_RETENTION_DAYS")},
		&cli.IntFlag{Name: "shutdown-timeout", Value: int64(o.ShutdownTimeoutSecs), Sources: cli.EnvVars("MALLARD_SHUTDOWN_TIMEOUT")},
		&cli.Float64Flag{Name: "rate-limit-per-site", Value: o.RateLimitPerSite, Destination: &o.RateLimitPerSite, Sources: cli.EnvVars("MALLARD_RATE_LIMIT")},
		&cli.IntFlag{Name: "cache-ttl", Value: int64(o.CacheTTLSecs), Sources: cli.EnvVars("MALLARD_CACHE_TTL")},
		&cli.BoolFlag{Name: "behavioral", Value: o.BehavioralEnabled, Destination: &o.BehavioralEnabled, Sources: cli.EnvVars("MALLARD_BEHAVIORAL")},
		&cli.StringFlag{Name: "geoip-db", Value: o.GeoIPPath, Destination: &o.GeoIPPath, Sources: cli.EnvVars("MALLARD_GEOIP_DB")},
	}
}

// Finalize copies flag values that a Destination pointer cannot express
// directly (int64-to-int, slice flags) and ensures a secret is present,
// generating one and warning if not.
func Finalize(cCtx *cli.Context, o *Options) {
	o.Port = int(cCtx.Int("port"))
	o.FlushEventCount = int(cCtx.Int("flush-count"))
	o.FlushIntervalSecs = int(cCtx.Int("flush-interval"))
	o.RetentionDays = int(cCtx.Int("retention-days"))
	o.ShutdownTimeoutSecs = int(cCtx.Int("shutdown-timeout"))
	o.CacheTTLSecs = int(cCtx.Int("cache-ttl"))
	if ids := cCtx.StringSlice("site-id"); len(ids) > 0 {
		o.SiteIDs = ids
	}
	if o.Secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		o.Secret = hex.EncodeToString(buf)
		logger.Get().Warn().Msg("no secret configured; generated a random one — visitor IDs will not persist across restarts")
	}
}

// AllowsOrigin reports whether authority (an Origin's host[:port]) is
// permitted. The port, if any, is stripped before comparison so an
// allowlist entry of "example.com" admits "example.com:8080" (spec P6);
// the remaining host is still matched exactly, never by prefix or suffix,
// so "example.com.evil.com" stays denied. An empty SiteIDs list means
// "accept any origin" (spec §6.4).
func (o *Options) AllowsOrigin(authority string) bool {
	if len(o.SiteIDs) == 0 {
		return true
	}
	host := authority
	if h, _, err := net.SplitHostPort(authority); err == nil {
		host = h
	}
	for _, id := range o.SiteIDs {
		if id == host {
			return true
		}
	}
	return false
}
