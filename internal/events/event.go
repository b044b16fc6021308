// Package events defines the ingested record and the sanitization applied
// to it at the ingestion boundary.
package events

import (
	"strings"
	"time"
	"unicode"
)

// Event is the essential ingested record (spec §3.1). All fields are
// immutable once constructed.
type Event struct {
	SiteID    string
	VisitorID string
	Timestamp time.Time
	EventName string
	Pathname  string
	Hostname  string
	Referrer  string

	ReferrerSource string
	UTMSource      string
	UTMMedium      string
	UTMCampaign    string
	UTMContent     string
	UTMTerm        string

	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	DeviceType     string
	ScreenSize     string

	CountryCode string
	Region      string
	City        string

	Props string

	// RevenueCents holds the revenue amount as integer cents to avoid
	// floating point drift; RevenueSet distinguishes "0.00" from
	// "not provided".
	RevenueCents    int64
	RevenueSet      bool
	RevenueCurrency string
}

const (
	maxSiteID    = 256
	maxEventName = 256
	maxURLField  = 2048
	maxProps     = 4096
	maxCurrency  = 3
)

// Sanitize truncates and strips control characters from every user-provided
// text field in place, per spec §3.1 invariant (ii): "all user-provided
// text is truncated and stripped of control characters at the ingestion
// boundary; never interpolated into query strings."
func (e *Event) Sanitize() {
	e.SiteID = sanitizeString(e.SiteID, maxSiteID)
	e.EventName = sanitizeString(e.EventName, maxEventName)
	e.Pathname = sanitizeString(e.Pathname, maxURLField)
	e.Hostname = sanitizeString(e.Hostname, maxURLField)
	e.Referrer = sanitizeString(e.Referrer, maxURLField)
	e.ReferrerSource = sanitizeString(e.ReferrerSource, maxURLField)
	e.UTMSource = sanitizeString(e.UTMSource, maxURLField)
	e.UTMMedium = sanitizeString(e.UTMMedium, maxURLField)
	e.UTMCampaign = sanitizeString(e.UTMCampaign, maxURLField)
	e.UTMContent = sanitizeString(e.UTMContent, maxURLField)
	e.UTMTerm = sanitizeString(e.UTMTerm, maxURLField)
	e.Browser = sanitizeString(e.Browser, maxURLField)
	e.BrowserVersion = sanitizeString(e.BrowserVersion, maxURLField)
	e.OS = sanitizeString(e.OS, maxURLField)
	e.OSVersion = sanitizeString(e.OSVersion, maxURLField)
	e.DeviceType = sanitizeString(e.DeviceType, maxURLField)
	e.ScreenSize = sanitizeString(e.ScreenSize, maxURLField)
	e.CountryCode = sanitizeString(e.CountryCode, maxURLField)
	e.Region = sanitizeString(e.Region, maxURLField)
	e.City = sanitizeString(e.City, maxURLField)
	e.Props = sanitizeString(e.Props, maxProps)
	e.RevenueCurrency = sanitizeString(e.RevenueCurrency, maxCurrency)
}

// sanitizeString strips C0/C1 control characters and truncates to max runes.
func sanitizeString(s string, max int) string {
	var b strings.Builder
	count := 0
	for _, r := range s {
		if count >= max {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

// ColumnNames is the closed enum of the 25 columns backing the hot table and
// unified view (spec §4.7, §4.8). Only names drawn from this set may be
// interpolated into a query as an identifier; values are interpolated only
// as literals quote-escaped by safety.QuoteLiteral, not bound as parameters.
var ColumnNames = []string{
	"site_id", "visitor_id", "timestamp", "event_name", "pathname",
	"hostname", "referrer", "referrer_source",
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term",
	"browser", "browser_version", "os", "os_version", "device_type", "screen_size",
	"country_code", "region", "city",
	"props", "revenue_amount", "revenue_currency",
}
