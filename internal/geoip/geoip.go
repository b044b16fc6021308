// Package geoip wraps a MaxMind-format city database for the GeoIP
// collaborator (SPEC_FULL §4.16.1). GeoIP database distribution is out of
// core scope (spec.md §1): Reader loads the mmdb lazily from a path
// supplied at startup (config.GeoIPPath) rather than embedding one, and
// falls back to all-empty results when no path is configured or the file
// cannot be opened — the graceful-degradation contract spec.md §4.16
// already requires of this collaborator.
package geoip

import (
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"github.com/mallardmetrics/mallard/internal/logger"
)

// Info is the geo attributes a lookup may produce.
type Info struct {
	CountryCode string
	Region      string
	City        string
}

// Reader resolves client IPs against a lazily opened mmdb file.
type Reader struct {
	path string

	once sync.Once
	db   *geoip2.Reader
}

// Open returns a Reader bound to path. path == "" yields a Reader whose
// Lookup always returns an empty Info, with no file access attempted.
func Open(path string) *Reader {
	return &Reader{path: path}
}

// Lookup resolves ip's country, region, and city. It never returns an
// error: a missing database, an unopenable file, or an unresolvable IP
// all degrade to an all-empty Info (spec §4.16).
func (r *Reader) Lookup(ip net.IP) Info {
	db := r.get()
	if db == nil || ip == nil {
		return Info{}
	}
	city, err := db.City(ip)
	if err != nil {
		return Info{}
	}
	var region string
	if len(city.Subdivisions) > 0 {
		region = city.Subdivisions[0].Names["en"]
	}
	return Info{
		CountryCode: city.Country.IsoCode,
		Region:      region,
		City:        city.City.Names["en"],
	}
}

func (r *Reader) get() *geoip2.Reader {
	r.once.Do(func() {
		if r.path == "" {
			return
		}
		db, err := geoip2.Open(r.path)
		if err != nil {
			logger.Get().Warn().Err(err).Str("path", r.path).Msg("geoip: failed to open database, lookups will return empty results")
			return
		}
		r.db = db
	})
	return r.db
}
