package engine

import (
	"io"
	"os"
	"path/filepath"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/parquet-go/parquet-go"
)

// ColdTable exposes every immutable partition file on disk as one logical
// table, read fresh on every query (spec §4.7's "cold tier"). One
// sql.Partition per (site_id, date, file) so large scans can, in
// principle, be parallelized by the engine's own executor.
type ColdTable struct {
	name    string
	dataDir string
}

var _ sql.Table = (*ColdTable)(nil)

// NewColdTable returns a cold table rooted at dataDir (the
// "<data_dir>/events" directory holding site_id=*/date=*/NNNN.parquet
// files, spec §6.3).
func NewColdTable(name, dataDir string) *ColdTable {
	return &ColdTable{name: name, dataDir: dataDir}
}

func (t *ColdTable) Name() string       { return t.name }
func (t *ColdTable) String() string     { return t.name }
func (t *ColdTable) Schema() sql.Schema { return Schema(t.name) }
func (t *ColdTable) Collation() sql.CollationID {
	return sql.Collation_Default
}

type coldPartition struct{ path string }

func (p coldPartition) Key() []byte { return []byte(p.path) }

type coldPartitionIter struct {
	files []string
	pos   int
}

func (it *coldPartitionIter) Next(ctx *sql.Context) (sql.Partition, error) {
	if it.pos >= len(it.files) {
		return nil, io.EOF
	}
	p := coldPartition{path: it.files[it.pos]}
	it.pos++
	return p, nil
}

func (it *coldPartitionIter) Close(ctx *sql.Context) error { return nil }

func (t *ColdTable) Partitions(ctx *sql.Context) (sql.PartitionIter, error) {
	files, err := filepath.Glob(filepath.Join(t.dataDir, "events", "site_id=*", "date=*", "*.parquet"))
	if err != nil {
		return nil, err
	}
	return &coldPartitionIter{files: files}, nil
}

func (t *ColdTable) PartitionRows(ctx *sql.Context, partition sql.Partition) (sql.RowIter, error) {
	cp, ok := partition.(coldPartition)
	if !ok {
		return sql.RowsToRowIter(), nil
	}
	rows, err := readParquetRows(cp.path)
	if err != nil {
		// A partition file that is missing or unreadable by the time a
		// query runs (e.g. mid-reaper-delete) degrades to no rows rather
		// than failing the whole scan.
		return sql.RowsToRowIter(), nil
	}
	return sql.RowsToRowIter(rows...), nil
}

// readParquetRows loads every row of path into sql.Row form. Rows are
// small (25 columns) so a full in-memory read per file is acceptable at
// the scale this engine targets; no row-group pruning is attempted.
func readParquetRows(path string) ([]sql.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := parquet.NewGenericReader[PartitionRow](f)
	defer reader.Close()

	var out []sql.Row
	buf := make([]PartitionRow, 256)
	for {
		n, err := reader.Read(buf)
		for _, r := range buf[:n] {
			out = append(out, r.ToSQLRow())
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, err
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}
