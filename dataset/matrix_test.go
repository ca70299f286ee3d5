package dataset

import (
	"testing"

	"github.com/mjuarezm/Arborist/feature"
)

func testColumns() []feature.ColumnSpec {
	return []feature.ColumnSpec{
		{Name: "age", Kind: feature.Numeric},
		{Name: "color", Kind: feature.Factor, Levels: []string{"red", "blue"}},
		{Name: "label", Kind: feature.Factor, Levels: []string{"no", "yes"}},
	}
}

func TestBuilderAddRowAndMatrix(t *testing.T) {
	bld, err := NewBuilder(testColumns(), "label")
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	rows := []map[string]string{
		{"age": "1.5", "color": "red"},
		{"age": "2.5", "color": "blue"},
	}
	labels := []string{"no", "yes"}
	for i, r := range rows {
		if err := bld.AddRow(r, labels[i]); err != nil {
			t.Fatalf("AddRow(%d): %v", i, err)
		}
	}
	m := bld.Matrix()
	if m.NRow != 2 {
		t.Fatalf("NRow = %d, want 2", m.NRow)
	}
	if !m.HasResponse || len(m.Ctg) != 2 {
		t.Fatalf("expected a 2-row classification response, got %+v", m)
	}
	if m.Ctg[0] != 0 || m.Ctg[1] != 1 {
		t.Errorf("Ctg = %v, want [0 1]", m.Ctg)
	}
	if len(m.NumBase) != 2 || m.NumBase[0] != 1.5 {
		t.Errorf("NumBase = %v, want [1.5 2.5]", m.NumBase)
	}
	pt, err := m.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if pt.NPredNum() != 1 || pt.NPredFac() != 1 {
		t.Errorf("table shape = (%d num, %d fac), want (1, 1)", pt.NPredNum(), pt.NPredFac())
	}
}

func TestBuilderRejectsUnknownLevel(t *testing.T) {
	bld, err := NewBuilder(testColumns(), "label")
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	err = bld.AddRow(map[string]string{"age": "1", "color": "green"}, "no")
	if err == nil {
		t.Fatalf("expected an error for an undeclared factor level")
	}
}

func TestNewBuilderRejectsUnknownResponse(t *testing.T) {
	if _, err := NewBuilder(testColumns(), "nonexistent"); err == nil {
		t.Fatalf("expected an error when responseName isn't among specs")
	}
}
