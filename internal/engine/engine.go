package engine

import (
	"context"

	sqle "github.com/dolthub/go-mysql-server"
	"github.com/dolthub/go-mysql-server/sql"
)

// Engine wraps go-mysql-server's default engine over a single Provider,
// following the teacher's thin-wrapper-plus-context-key pattern so the
// rest of the codebase never constructs a sqle.Engine directly.
type Engine struct {
	*sqle.Engine
	DB *DB
}

// New builds an engine over db, registering the behavioral function set
// only when enabled (SPEC_FULL §4.18).
func New(db *DB, behavioralEnabled bool) *Engine {
	return &Engine{
		Engine: sqle.NewDefault(NewProvider(db, behavioralEnabled)),
		DB:     db,
	}
}

// NewContext builds a *sql.Context for a query, the go-mysql-server
// convention for threading a request-scoped context through planning and
// execution.
func (e *Engine) NewContext(ctx context.Context) *sql.Context {
	return sql.NewContext(ctx)
}

type engineKey struct{}

// Open constructs an engine rooted at dataDir and returns a context
// carrying it, mirroring the teacher's Open/Get pair.
func Open(ctx context.Context, dataDir string, behavioralEnabled bool) (context.Context, *Engine) {
	db := NewDB(dataDir)
	e := New(db, behavioralEnabled)
	return context.WithValue(ctx, engineKey{}, e), e
}

// Get retrieves the engine installed by Open. It panics if none was
// installed, matching the teacher's assumption that engine setup always
// precedes use.
func Get(ctx context.Context) *Engine {
	return ctx.Value(engineKey{}).(*Engine)
}
