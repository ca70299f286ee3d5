package json

import (
	"testing"

	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/feature"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	m := &dataset.Matrix{
		Columns: []feature.ColumnSpec{
			{Name: "age", Kind: feature.Numeric},
			{Name: "color", Kind: feature.Factor, Levels: []string{"red", "blue"}},
		},
		NRow:        2,
		NumBase:     []float64{1.5, 2.5},
		FacBase:     []int{0, 1},
		FacCard:     []int{2},
		HasResponse: true,
		Y:           []float64{10, 20},
	}
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.NRow != m.NRow || len(got.Columns) != 2 || got.Y[1] != 20 {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}
