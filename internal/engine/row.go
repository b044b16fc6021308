package engine

import (
	"time"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/mallardmetrics/mallard/internal/events"
)

// PartitionRow is the on-disk (and in-flight) representation of one event
// row, tagged for parquet-go's generic reader/writer. Field order matches
// Columns exactly so ToSQLRow/RowFromSQL stay a straight zip.
type PartitionRow struct {
	SiteID         string    `parquet:"site_id,zstd"`
	VisitorID      string    `parquet:"visitor_id,zstd"`
	Timestamp      time.Time `parquet:"timestamp,timestamp"`
	EventName      string    `parquet:"event_name,zstd"`
	Pathname       string    `parquet:"pathname,zstd"`
	Hostname       string    `parquet:"hostname,zstd"`
	Referrer       string    `parquet:"referrer,zstd"`
	ReferrerSource string    `parquet:"referrer_source,zstd"`
	UTMSource      string    `parquet:"utm_source,zstd"`
	UTMMedium      string    `parquet:"utm_medium,zstd"`
	UTMCampaign    string    `parquet:"utm_campaign,zstd"`
	UTMContent     string    `parquet:"utm_content,zstd"`
	UTMTerm        string    `parquet:"utm_term,zstd"`
	Browser        string    `parquet:"browser,zstd"`
	BrowserVersion string    `parquet:"browser_version,zstd"`
	OS             string    `parquet:"os,zstd"`
	OSVersion      string    `parquet:"os_version,zstd"`
	DeviceType     string    `parquet:"device_type,zstd"`
	ScreenSize     string    `parquet:"screen_size,zstd"`
	CountryCode    string    `parquet:"country_code,zstd"`
	Region         string    `parquet:"region,zstd"`
	City           string    `parquet:"city,zstd"`
	Props          string    `parquet:"props,zstd"`
	RevenueAmount  int64     `parquet:"revenue_amount"`
	RevenueCurrency string   `parquet:"revenue_currency,zstd"`
}

// FromEvent converts a sanitized ingested event into its storage row form.
// Callers must call e.Sanitize() before this; FromEvent trusts its input.
func FromEvent(e events.Event) PartitionRow {
	return PartitionRow{
		SiteID: e.SiteID, VisitorID: e.VisitorID, Timestamp: e.Timestamp,
		EventName: e.EventName, Pathname: e.Pathname, Hostname: e.Hostname,
		Referrer: e.Referrer, ReferrerSource: e.ReferrerSource,
		UTMSource: e.UTMSource, UTMMedium: e.UTMMedium, UTMCampaign: e.UTMCampaign,
		UTMContent: e.UTMContent, UTMTerm: e.UTMTerm,
		Browser: e.Browser, BrowserVersion: e.BrowserVersion,
		OS: e.OS, OSVersion: e.OSVersion, DeviceType: e.DeviceType, ScreenSize: e.ScreenSize,
		CountryCode: e.CountryCode, Region: e.Region, City: e.City,
		Props: e.Props, RevenueAmount: e.RevenueCents, RevenueCurrency: e.RevenueCurrency,
	}
}

// ToSQLRow projects r into the column order defined by Columns/Schema.
func (r PartitionRow) ToSQLRow() sql.Row {
	return sql.Row{
		r.SiteID, r.VisitorID, r.Timestamp, r.EventName, r.Pathname,
		r.Hostname, r.Referrer, r.ReferrerSource,
		r.UTMSource, r.UTMMedium, r.UTMCampaign, r.UTMContent, r.UTMTerm,
		r.Browser, r.BrowserVersion, r.OS, r.OSVersion, r.DeviceType, r.ScreenSize,
		r.CountryCode, r.Region, r.City,
		r.Props, r.RevenueAmount, r.RevenueCurrency,
	}
}

// RowFromSQL reverses ToSQLRow.
func RowFromSQL(row sql.Row) PartitionRow {
	get := func(i int) string {
		if row[i] == nil {
			return ""
		}
		s, _ := row[i].(string)
		return s
	}
	ts, _ := row[2].(time.Time)
	var cents int64
	if row[23] != nil {
		switch v := row[23].(type) {
		case int64:
			cents = v
		case int32:
			cents = int64(v)
		}
	}
	return PartitionRow{
		SiteID: get(0), VisitorID: get(1), Timestamp: ts, EventName: get(3), Pathname: get(4),
		Hostname: get(5), Referrer: get(6), ReferrerSource: get(7),
		UTMSource: get(8), UTMMedium: get(9), UTMCampaign: get(10), UTMContent: get(11), UTMTerm: get(12),
		Browser: get(13), BrowserVersion: get(14), OS: get(15), OSVersion: get(16), DeviceType: get(17), ScreenSize: get(18),
		CountryCode: get(19), Region: get(20), City: get(21),
		Props: get(22), RevenueAmount: cents, RevenueCurrency: get(24),
	}
}
