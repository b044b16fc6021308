package engine

import (
	"io"
	"sync"

	"github.com/dolthub/go-mysql-server/sql"
)

// HotTable is the in-process table holding events since the last flush
// (spec §4.7's "hot table"). It is a single mutable partition guarded by a
// mutex; flush truncates it after a successful columnar write.
type HotTable struct {
	name string

	mu   sync.RWMutex
	rows []sql.Row
}

var (
	_ sql.Table           = (*HotTable)(nil)
	_ sql.InsertableTable  = (*HotTable)(nil)
	_ sql.TruncateableTable = (*HotTable)(nil)
)

// NewHotTable returns an empty hot table named name.
func NewHotTable(name string) *HotTable {
	return &HotTable{name: name}
}

func (t *HotTable) Name() string       { return t.name }
func (t *HotTable) String() string     { return t.name }
func (t *HotTable) Schema() sql.Schema { return Schema(t.name) }
func (t *HotTable) Collation() sql.CollationID {
	return sql.Collation_Default
}

// AppendRows bulk-appends rows directly, bypassing row-by-row SQL insert —
// the columnar writer's flush path uses this for throughput (spec §4.6
// step 3: "a columnar/bulk append, not row-by-row SQL").
func (t *HotTable) AppendRows(rows []sql.Row) {
	if len(rows) == 0 {
		return
	}
	t.mu.Lock()
	t.rows = append(t.rows, rows...)
	t.mu.Unlock()
}

// Snapshot returns a copy of every row currently held, for the columnar
// writer to export without racing a concurrent Truncate.
func (t *HotTable) Snapshot() []sql.Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]sql.Row, len(t.rows))
	copy(out, t.rows)
	return out
}

type hotPartition struct{}

func (hotPartition) Key() []byte { return []byte("hot") }

type hotPartitionIter struct {
	done bool
}

func (it *hotPartitionIter) Next(ctx *sql.Context) (sql.Partition, error) {
	if it.done {
		return nil, io.EOF
	}
	it.done = true
	return hotPartition{}, nil
}

func (it *hotPartitionIter) Close(ctx *sql.Context) error { return nil }

func (t *HotTable) Partitions(ctx *sql.Context) (sql.PartitionIter, error) {
	return &hotPartitionIter{}, nil
}

func (t *HotTable) PartitionRows(ctx *sql.Context, _ sql.Partition) (sql.RowIter, error) {
	return sql.RowsToRowIter(t.Snapshot()...), nil
}

// Inserter implements sql.InsertableTable.
func (t *HotTable) Inserter(ctx *sql.Context) sql.RowInserter {
	return &hotInserter{table: t}
}

type hotInserter struct {
	table   *HotTable
	pending []sql.Row
}

func (h *hotInserter) StatementBegin(ctx *sql.Context) {}

func (h *hotInserter) Insert(ctx *sql.Context, row sql.Row) error {
	h.pending = append(h.pending, row)
	return nil
}

func (h *hotInserter) DiscardChanges(ctx *sql.Context, errorEncountered error) error {
	h.pending = nil
	return nil
}

func (h *hotInserter) StatementComplete(ctx *sql.Context) error {
	if len(h.pending) == 0 {
		return nil
	}
	h.table.mu.Lock()
	h.table.rows = append(h.table.rows, h.pending...)
	h.table.mu.Unlock()
	h.pending = nil
	return nil
}

func (h *hotInserter) Close(ctx *sql.Context) error { return nil }

// Truncate implements sql.TruncateableTable.
func (t *HotTable) Truncate(ctx *sql.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.rows)
	t.rows = nil
	return n, nil
}
