// Package querycore implements the core analytical queries — main
// metrics, breakdowns, and timeseries — against the events_all view
// (spec §4.8).
package querycore

import (
	"context"
	"fmt"
	"io"

	gosql "github.com/dolthub/go-mysql-server/sql"

	"github.com/mallardmetrics/mallard/internal/cache"
	"github.com/mallardmetrics/mallard/internal/engine"
	"github.com/mallardmetrics/mallard/internal/safety"
)

// Runner executes core queries against an engine, optionally caching
// results for their configured TTL (spec §4.10).
type Runner struct {
	eng   *engine.Engine
	cache *cache.Cache
}

// New returns a Runner over eng, caching results in c.
func New(eng *engine.Engine, c *cache.Cache) *Runner {
	return &Runner{eng: eng, cache: c}
}

// runQuery executes query against events_all and returns every resulting
// row. query must never contain an unescaped user-supplied value — every
// caller in this package quotes string literals with safety.QuoteLiteral
// and validates enums/numbers before building the statement text, since
// this version of go-mysql-server's public bound-parameter API is not
// something this exercise can verify without compiling against it.
func (r *Runner) runQuery(ctx context.Context, query string) ([]gosql.Row, error) {
	sqlCtx := engine.NewSessionContext(ctx, engine.DatabaseName)
	_, iter, err := r.eng.Query(sqlCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querycore: %w", err)
	}
	var rows []gosql.Row
	for {
		row, err := iter.Next(sqlCtx)
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = iter.Close(sqlCtx)
			return nil, fmt.Errorf("querycore: %w", err)
		}
		rows = append(rows, row)
	}
	if err := iter.Close(sqlCtx); err != nil {
		return nil, fmt.Errorf("querycore: %w", err)
	}
	return rows, nil
}

func quoteSiteID(siteID string) string {
	return "'" + safety.QuoteLiteral(siteID) + "'"
}

func timeLiteral(s string) string {
	return "'" + safety.QuoteLiteral(s) + "'"
}

func withCache[T any](c *cache.Cache, key string, compute func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	out, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(key, out)
	return out, nil
}
