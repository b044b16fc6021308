package engine

import (
	"testing"

	"github.com/dolthub/go-mysql-server/sql/types"
)

func TestSchemaColumnTypes(t *testing.T) {
	sch := Schema("events")

	byName := make(map[string]string)
	for _, col := range sch {
		byName[col.Name] = col.Type.String()
	}

	if sch[2].Name != "timestamp" || sch[2].Type != types.Timestamp {
		t.Fatalf("expected column 2 to be timestamp, got %s (%s)", sch[2].Name, sch[2].Type)
	}
	if sch[2].Nullable {
		t.Error("timestamp must not be nullable")
	}
	if sch[23].Name != "revenue_amount" || sch[23].Type != types.Int64 {
		t.Fatalf("expected column 23 to be revenue_amount int64, got %s (%s)", sch[23].Name, sch[23].Type)
	}
	if sch[0].Type != types.Text {
		t.Errorf("expected site_id to default to text, got %s", sch[0].Type)
	}
	if len(sch) != len(Columns) {
		t.Fatalf("schema length %d does not match Columns length %d", len(sch), len(Columns))
	}
}

func TestColumnIndex(t *testing.T) {
	if i := ColumnIndex("site_id"); i != 0 {
		t.Errorf("expected site_id at 0, got %d", i)
	}
	if i := ColumnIndex("revenue_currency"); i != len(Columns)-1 {
		t.Errorf("expected revenue_currency last, got %d", i)
	}
	if i := ColumnIndex("does_not_exist"); i != -1 {
		t.Errorf("expected -1 for unknown column, got %d", i)
	}
}
