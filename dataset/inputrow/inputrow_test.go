package inputrow

import (
	"strings"
	"testing"

	"github.com/mjuarezm/Arborist/feature"
)

type silentRequester struct{}

func (silentRequester) RequestValueFor(feature.ColumnSpec) error        { return nil }
func (silentRequester) RejectValueFor(feature.ColumnSpec, string) error { return nil }

func testColumns() []feature.ColumnSpec {
	return []feature.ColumnSpec{
		{Name: "age", Kind: feature.Numeric},
		{Name: "color", Kind: feature.Factor, Levels: []string{"red", "blue"}},
	}
}

func TestReadAcceptsValidValues(t *testing.T) {
	in := strings.NewReader("1.5\nblue\n")
	row, err := Read(in, testColumns(), silentRequester{}, "?")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if row["age"] != "1.5" || row["color"] != "blue" {
		t.Fatalf("row = %+v", row)
	}
}

func TestReadRetriesInvalidFactorValue(t *testing.T) {
	in := strings.NewReader("1.5\ngreen\nblue\n")
	row, err := Read(in, testColumns(), silentRequester{}, "?")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if row["color"] != "blue" {
		t.Fatalf("expected the retried value to win, got %q", row["color"])
	}
}

func TestReadRejectsUndefinedValue(t *testing.T) {
	in := strings.NewReader("?\n")
	_, err := Read(in, testColumns(), silentRequester{}, "?")
	if err == nil {
		t.Fatalf("expected an error for an undefined value")
	}
}
