package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/mallardmetrics/mallard/internal/buffer"
	"github.com/mallardmetrics/mallard/internal/cache"
	"github.com/mallardmetrics/mallard/internal/engine"
	"github.com/mallardmetrics/mallard/internal/logger"
)

// Writer drains the event buffer on a schedule, makes the drained rows
// visible in the hot table, and durably persists them as Parquet files
// grouped by (site_id, date) (spec §4.6).
type Writer struct {
	buf     *buffer.Buffer
	db      *engine.DB
	dataDir string
	cache   *cache.Cache
}

// New returns a Writer flushing buf into dataDir's partition layout,
// backed by db's hot table and events_all view. c is invalidated after
// every successful flush so query results computed against the prior
// snapshot are never served past the data they summarize (spec §4.10).
func New(buf *buffer.Buffer, db *engine.DB, dataDir string, c *cache.Cache) *Writer {
	return &Writer{buf: buf, db: db, dataDir: dataDir, cache: c}
}

// Flush drains the buffer, appends to the hot table, and writes every
// partition present in the hot table to a fresh Parquet file. Rows are
// appended to the hot table before any Parquet write is attempted, so by
// the time this function can fail the drained events are already held in
// memory and queryable via the hot table (spec P4's no-event-loss invariant) —
// a write failure simply leaves that partition's rows in the hot table
// for the next cycle to retry, rather than being restored to the buffer,
// which would re-append and double-count them.
func (w *Writer) Flush(ctx context.Context) error {
	drained := w.buf.Drain()
	if len(drained) == 0 {
		return nil
	}

	runID := uuid.New().String()
	log := logger.Get().With().Str("flush_id", runID).Logger()

	newRows := make([]sql.Row, 0, len(drained))
	for _, e := range drained {
		newRows = append(newRows, engine.FromEvent(e).ToSQLRow())
	}
	w.db.Hot().AppendRows(newRows)

	groups := groupByPartition(w.db.Hot().Snapshot())

	var failed bool
	for key, rows := range groups {
		if !safePartition(key.siteID, key.date) {
			// Never silently drop rows: leave them in the hot table for a
			// human to investigate rather than truncating unwritten data.
			failed = true
			continue
		}
		dir := partitionDir(w.dataDir, key.siteID, key.date)
		path, err := nextFilePath(dir)
		if err != nil {
			log.Error().Err(err).Str("site_id", key.siteID).Str("date", key.date).Msg("flush: allocate partition file")
			failed = true
			continue
		}
		if err := writeParquetFile(path, rows); err != nil {
			log.Error().Err(err).Str("path", path).Msg("flush: write partition file")
			failed = true
			continue
		}
	}

	if failed {
		return fmt.Errorf("flush: one or more partitions failed to write, retained in hot table for retry")
	}

	n, err := w.db.Hot().Truncate(sql.NewContext(ctx))
	if err != nil {
		return fmt.Errorf("flush: truncate hot table: %w", err)
	}
	w.db.RefreshView()
	if w.cache != nil {
		w.cache.Invalidate()
	}
	log.Info().Int("events", n).Int("partitions", len(groups)).Msg("flush complete")
	return nil
}

// groupByPartition buckets hot-table rows by (site_id, UTC date of
// timestamp), converting back to PartitionRow for the Parquet writer.
func groupByPartition(snapshot []sql.Row) map[partitionKey][]engine.PartitionRow {
	groups := make(map[partitionKey][]engine.PartitionRow)
	for _, row := range snapshot {
		pr := engine.RowFromSQL(row)
		key := partitionKey{siteID: pr.SiteID, date: pr.Timestamp.UTC().Format("2006-01-02")}
		groups[key] = append(groups[key], pr)
	}
	return groups
}

func writeParquetFile(path string, rows []engine.PartitionRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pw := parquet.NewGenericWriter[engine.PartitionRow](f)
	if _, err := pw.Write(rows); err != nil {
		pw.Close()
		return err
	}
	return pw.Close()
}
