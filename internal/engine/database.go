package engine

import (
	"strings"

	"github.com/dolthub/go-mysql-server/sql"
)

const (
	// DatabaseName is the single logical database this engine exposes.
	DatabaseName = "mallard"
	// HotTableName is the in-process table holding events since the last flush.
	HotTableName = "events"
	// ColdTableName is the read-through table over on-disk parquet partitions.
	ColdTableName = "events_cold"
	// UnifiedViewName is the view every analytical query targets (spec §4.7).
	UnifiedViewName = "events_all"
)

// DB wires the hot table, cold table, and the events_all view together as
// one sql.Database, following the teacher's CreateView/GetViewDefinition
// pattern.
type DB struct {
	hot   *HotTable
	cold  *ColdTable
	views map[string]sql.ViewDefinition
}

var (
	_ sql.Database     = (*DB)(nil)
	_ sql.ViewDatabase  = (*DB)(nil)
)

// NewDB returns a database over dataDir's cold partitions plus a fresh hot
// table, with events_all already defined.
func NewDB(dataDir string) *DB {
	db := &DB{
		hot:   NewHotTable(HotTableName),
		cold:  NewColdTable(ColdTableName, dataDir),
		views: make(map[string]sql.ViewDefinition),
	}
	db.refreshView()
	return db
}

// Hot returns the hot table for direct bulk-append/truncate access by the
// columnar writer (spec §4.6).
func (db *DB) Hot() *HotTable { return db.hot }

func (DB) Name() string { return DatabaseName }

func (db *DB) GetTableInsensitive(ctx *sql.Context, name string) (sql.Table, bool, error) {
	switch strings.ToLower(name) {
	case HotTableName:
		return db.hot, true, nil
	case ColdTableName:
		return db.cold, true, nil
	default:
		return nil, false, nil
	}
}

func (db *DB) GetTableNames(ctx *sql.Context) ([]string, error) {
	return []string{HotTableName, ColdTableName}, nil
}

func (DB) IsReadOnly() bool { return false }

// refreshView (re)defines events_all as the UNION ALL of the hot and cold
// tables (spec §4.7). Columns are matched by position, not by name; both
// tables report the same Schema(). Called at construction and after
// every flush.
func (db *DB) refreshView() {
	stmt := "SELECT * FROM " + HotTableName + " UNION ALL SELECT * FROM " + ColdTableName
	db.views[UnifiedViewName] = sql.ViewDefinition{
		Name:                UnifiedViewName,
		TextDefinition:      stmt,
		CreateViewStatement: "CREATE VIEW " + UnifiedViewName + " AS " + stmt,
	}
}

// RefreshView is the exported hook the columnar writer calls post-flush.
func (db *DB) RefreshView() { db.refreshView() }

func (db *DB) CreateView(ctx *sql.Context, name, selectStatement, createViewStmt string) error {
	if _, ok := db.views[name]; ok {
		return sql.ErrExistingView.New(name)
	}
	db.views[name] = sql.ViewDefinition{Name: name, TextDefinition: selectStatement, CreateViewStatement: createViewStmt}
	return nil
}

func (db *DB) DropView(ctx *sql.Context, name string) error {
	if _, ok := db.views[name]; !ok {
		return sql.ErrViewDoesNotExist.New(db.Name(), name)
	}
	delete(db.views, name)
	return nil
}

func (db *DB) GetViewDefinition(ctx *sql.Context, viewName string) (sql.ViewDefinition, bool, error) {
	def, ok := db.views[viewName]
	return def, ok, nil
}

func (db *DB) AllViews(ctx *sql.Context) ([]sql.ViewDefinition, error) {
	out := make([]sql.ViewDefinition, 0, len(db.views))
	for _, v := range db.views {
		out = append(out, v)
	}
	return out, nil
}

// Provider exposes DB as the single database an engine instance serves,
// plus the optional behavioral function set.
type Provider struct {
	db        *DB
	functions map[string]sql.Function
}

var (
	_ sql.DatabaseProvider = (*Provider)(nil)
	_ sql.FunctionProvider = (*Provider)(nil)
)

// NewProvider returns a provider over db. If behavioralEnabled is false,
// the behavioral function set is never registered — lookups fail with
// ErrFunctionNotFound (SPEC_FULL §4.18). internal/behavioral does not call
// these functions; it checks its own enabled flag instead.
func NewProvider(db *DB, behavioralEnabled bool) *Provider {
	p := &Provider{db: db, functions: make(map[string]sql.Function)}
	if behavioralEnabled {
		for _, fn := range BehavioralFunctions {
			p.functions[strings.ToLower(fn.FunctionName())] = fn
		}
	}
	return p
}

func (p *Provider) Function(ctx *sql.Context, name string) (sql.Function, error) {
	fn, ok := p.functions[strings.ToLower(name)]
	if !ok {
		return nil, sql.ErrFunctionNotFound.New(name)
	}
	return fn, nil
}

func (p *Provider) Database(_ *sql.Context, name string) (sql.Database, error) {
	if strings.ToLower(name) != DatabaseName {
		return nil, sql.ErrDatabaseNotFound.New(name)
	}
	return p.db, nil
}

func (p *Provider) AllDatabases(_ *sql.Context) []sql.Database {
	return []sql.Database{p.db}
}

func (p *Provider) HasDatabase(_ *sql.Context, name string) bool {
	return strings.ToLower(name) == DatabaseName
}
