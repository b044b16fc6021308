package engine

import (
	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/types"
)

// Columns is the closed, ordered list backing the 25-column event schema
// (spec §3.1, §4.7). Column order here also fixes row-slice layout for
// every table implementation in this package.
var Columns = []string{
	"site_id", "visitor_id", "timestamp", "event_name", "pathname",
	"hostname", "referrer", "referrer_source",
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term",
	"browser", "browser_version", "os", "os_version", "device_type", "screen_size",
	"country_code", "region", "city",
	"props", "revenue_amount", "revenue_currency",
}

// Schema builds the column list for table, typing "timestamp" as a
// TIMESTAMP, "revenue_amount" as an integer (stored as cents), and every
// remaining column as text.
func Schema(table string) sql.Schema {
	o := make(sql.Schema, 0, len(Columns))
	for _, name := range Columns {
		col := &sql.Column{Name: name, Source: table, Nullable: true}
		switch name {
		case "timestamp":
			col.Type = types.Timestamp
			col.Nullable = false
		case "revenue_amount":
			col.Type = types.Int64
		default:
			col.Type = types.Text
		}
		o = append(o, col)
	}
	return o
}

// ColumnIndex returns the position of name within Columns, or -1.
func ColumnIndex(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	return -1
}
