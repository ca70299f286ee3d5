package yaml

import (
	"testing"

	"github.com/mjuarezm/Arborist/feature"
)

func TestReadColumnsOrdersByName(t *testing.T) {
	doc := []byte(`
columns:
  zipcode: numeric
  age: numeric
  color: [red, blue, green]
`)
	specs, err := ReadColumns(doc)
	if err != nil {
		t.Fatalf("ReadColumns: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(specs))
	}
	names := []string{specs[0].Name, specs[1].Name, specs[2].Name}
	want := []string{"age", "color", "zipcode"}
	for i, n := range names {
		if n != want[i] {
			t.Errorf("specs[%d].Name = %q, want %q (deterministic ordering by name)", i, n, want[i])
		}
	}
	for _, s := range specs {
		if s.Name == "color" {
			if s.Kind != feature.Factor || len(s.Levels) != 3 {
				t.Errorf("color spec = %+v, want a 3-level factor", s)
			}
		}
	}
}

func TestReadColumnsRejectsMissingColumns(t *testing.T) {
	if _, err := ReadColumns([]byte(`foo: bar`)); err == nil {
		t.Fatalf("expected error for a document with no columns property")
	}
}
