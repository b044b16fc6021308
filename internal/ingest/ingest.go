// Package ingest implements the ingestion orchestrator: the ten-step
// validate/filter/enrich/buffer pipeline a single event payload passes
// through between the HTTP boundary and the in-memory buffer (spec §4.11).
package ingest

import (
	"encoding/json"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/mallardmetrics/mallard/internal/apierr"
	"github.com/mallardmetrics/mallard/internal/bots"
	"github.com/mallardmetrics/mallard/internal/buffer"
	"github.com/mallardmetrics/mallard/internal/config"
	"github.com/mallardmetrics/mallard/internal/events"
	"github.com/mallardmetrics/mallard/internal/flush"
	"github.com/mallardmetrics/mallard/internal/geoip"
	"github.com/mallardmetrics/mallard/internal/logger"
	"github.com/mallardmetrics/mallard/internal/ratelimit"
	"github.com/mallardmetrics/mallard/internal/referrer"
	"github.com/mallardmetrics/mallard/internal/safety"
	"github.com/mallardmetrics/mallard/internal/ua"
	"github.com/mallardmetrics/mallard/internal/visitorid"
)

// MaxBodyBytes bounds the ingest request body (§6.1's 413 status).
const MaxBodyBytes = 64 << 10

const (
	maxSiteID    = 256
	maxEventName = 256
	maxURLField  = 2048
	maxProps     = 4096
	maxCurrency  = 3
)

// payload is the wire shape of a tracking-script event (spec §6.1).
type payload struct {
	SiteID          string   `json:"d"`
	EventName       string   `json:"n"`
	URL             string   `json:"u"`
	Referrer        string   `json:"r"`
	ScreenWidth     *float64 `json:"w"`
	Props           string   `json:"p"`
	RevenueAmount   *float64 `json:"ra"`
	RevenueCurrency string   `json:"rc"`
}

// Request carries everything the orchestrator needs beyond the parsed
// body: the pieces an HTTP framework, not this package, owns.
type Request struct {
	Body      []byte
	Origin    string // Origin header's authority (host[:port]), "" if absent
	ClientIP  string
	UserAgent string
}

// Orchestrator wires the per-request collaborators named in spec §4.11.
type Orchestrator struct {
	opts     *config.Options
	limiter  *ratelimit.Limiter
	visitors *visitorid.Deriver
	geo      *geoip.Reader
	buf      *buffer.Buffer
	flusher  *flush.Supervisor
}

// New returns an Orchestrator bound to its collaborators.
func New(opts *config.Options, limiter *ratelimit.Limiter, visitors *visitorid.Deriver, geo *geoip.Reader, buf *buffer.Buffer, flusher *flush.Supervisor) *Orchestrator {
	return &Orchestrator{opts: opts, limiter: limiter, visitors: visitors, geo: geo, buf: buf, flusher: flusher}
}

// Ingest runs req through the ten-step pipeline. A non-nil *apierr.Error
// carries both the status and the error body the caller should
// serialize; nil means the event (or a silently-dropped bot event) was
// accepted and the caller answers 202.
func (o *Orchestrator) Ingest(req Request) *apierr.Error {
	if len(req.Body) > MaxBodyBytes {
		return apierr.New(apierr.PayloadTooLarge, "request body exceeds the maximum ingest size")
	}

	var p payload
	if err := json.Unmarshal(req.Body, &p); err != nil {
		return apierr.New(apierr.SchemaViolation, "malformed JSON body")
	}
	if p.SiteID == "" || p.EventName == "" || p.URL == "" {
		return apierr.New(apierr.SchemaViolation, "d, n, and u are required")
	}
	if len(p.SiteID) > maxSiteID || len(p.EventName) > maxEventName || len(p.URL) > maxURLField ||
		len(p.Referrer) > maxURLField || len(p.Props) > maxProps || len(p.RevenueCurrency) > maxCurrency {
		return apierr.New(apierr.SchemaViolation, "one or more fields exceed their maximum length")
	}

	if !safety.IsSafePathComponent(p.SiteID) {
		return apierr.New(apierr.ClientInvalid, "invalid site_id")
	}

	// An absent Origin header (same-origin or non-browser client) is not
	// itself a denial; AllowsOrigin's own empty-list check covers "no
	// allowlist configured" regardless.
	if req.Origin != "" && !o.opts.AllowsOrigin(req.Origin) {
		return apierr.New(apierr.OriginDenied, "origin not in allowlist")
	}

	if !o.limiter.Allow(p.SiteID) {
		return apierr.New(apierr.RateLimited, "rate limit exceeded")
	}

	if o.opts.FilterBots && bots.IsBot(req.UserAgent) {
		return nil
	}

	now := time.Now().UTC()
	visitorID := o.visitors.Derive(req.ClientIP, req.UserAgent, now)
	geoInfo := o.geo.Lookup(net.ParseIP(req.ClientIP))
	// req.ClientIP is not read again past this point.

	agent := ua.Parse(req.UserAgent, int(widthOf(p.ScreenWidth)))
	hostname, pathname := splitURL(p.URL)
	utm := referrer.ParseUTM(p.URL)
	referrerSource := referrer.ParseSource(p.Referrer)

	e := events.Event{
		SiteID:         p.SiteID,
		VisitorID:      visitorID,
		Timestamp:      now,
		EventName:      p.EventName,
		Pathname:       pathname,
		Hostname:       hostname,
		Referrer:       p.Referrer,
		ReferrerSource: referrerSource,
		UTMSource:      utm.Source,
		UTMMedium:      utm.Medium,
		UTMCampaign:    utm.Campaign,
		UTMContent:     utm.Content,
		UTMTerm:        utm.Term,
		Browser:        agent.Browser,
		BrowserVersion: agent.BrowserVersion,
		OS:             agent.OS,
		OSVersion:      agent.OSVersion,
		DeviceType:     agent.DeviceType,
		ScreenSize:     screenSizeOf(p.ScreenWidth),
		CountryCode:    geoInfo.CountryCode,
		Region:         geoInfo.Region,
		City:           geoInfo.City,
		Props:          p.Props,
	}
	if p.RevenueAmount != nil {
		e.RevenueCents = int64(*p.RevenueAmount*100 + 0.5)
		e.RevenueSet = true
		e.RevenueCurrency = p.RevenueCurrency
	}
	e.Sanitize()

	n := o.buf.Push(e)
	if n >= o.opts.FlushEventCount {
		o.flusher.Trigger()
	}

	return nil
}

func widthOf(w *float64) float64 {
	if w == nil {
		return 0
	}
	return *w
}

func screenSizeOf(w *float64) string {
	if w == nil {
		return ""
	}
	return strconv.Itoa(int(*w))
}

// splitURL extracts u's hostname and path, logging and returning empty
// strings for an unparseable URL rather than rejecting the event: pathname
// and hostname are enrichment, not required fields (spec §6.1).
func splitURL(rawURL string) (hostname, pathname string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		logger.Get().Warn().Str("url", rawURL).Msg("ingest: unparseable event URL")
		return "", ""
	}
	return u.Hostname(), u.Path
}
