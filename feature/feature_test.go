package feature

import "testing"

func TestSplitOrdersNumericBeforeFactor(t *testing.T) {
	specs := []ColumnSpec{
		{Name: "color", Kind: Factor, Levels: []string{"red", "blue"}},
		{Name: "age", Kind: Numeric},
		{Name: "size", Kind: Factor, Levels: []string{"s", "m", "l"}},
	}
	numeric, factor := Split(specs)
	if len(numeric) != 1 || numeric[0].Name != "age" {
		t.Fatalf("unexpected numeric split: %+v", numeric)
	}
	if len(factor) != 2 || factor[0].Name != "color" || factor[1].Name != "size" {
		t.Fatalf("unexpected factor split: %+v", factor)
	}
}

func TestLevelCode(t *testing.T) {
	c := ColumnSpec{Name: "color", Kind: Factor, Levels: []string{"red", "blue"}}
	code, ok := c.LevelCode("blue")
	if !ok || code != 1 {
		t.Fatalf("LevelCode(blue) = %d, %v, want 1, true", code, ok)
	}
	if _, ok := c.LevelCode("green"); ok {
		t.Fatalf("LevelCode(green) should not be found")
	}
}

func TestValidateRejectsDuplicateNames(t *testing.T) {
	specs := []ColumnSpec{
		{Name: "age", Kind: Numeric},
		{Name: "age", Kind: Numeric},
	}
	if err := Validate(specs); err == nil {
		t.Fatalf("expected error for duplicate column name")
	}
}

func TestValidateRejectsShortFactor(t *testing.T) {
	specs := []ColumnSpec{
		{Name: "color", Kind: Factor, Levels: []string{"red"}},
	}
	if err := Validate(specs); err == nil {
		t.Fatalf("expected error for single-level factor")
	}
}
