// Package csv loads a dataset.Matrix from a CSV stream: a header row naming
// columns, and one row per observation. A '?' cell marks a value absent
// from training (rejected as an error here — the packed forest core has no
// missing-value branch).
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/feature"
)

// ReadMatrix takes an io.Reader for a CSV stream, the declared columns and
// the name of the response column (empty for a prediction-only batch
// lacking a label) and returns a dataset.Matrix parsed from it, or an
// error.
//
// The header row is expected to name every column in cols. A non-empty
// responseName must be one of cols, whose declared kind decides how the
// response is parsed. Order does not matter, and header columns not
// present in cols are ignored.
func ReadMatrix(r io.Reader, cols []feature.ColumnSpec, responseName string) (*dataset.Matrix, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset/csv: reading header: %v", err)
	}
	colPos := make(map[string]int, len(header))
	for i, name := range header {
		colPos[name] = i
	}
	for _, c := range cols {
		if _, ok := colPos[c.Name]; !ok {
			return nil, fmt.Errorf("dataset/csv: header is missing declared column %q", c.Name)
		}
	}
	if responseName != "" {
		if _, ok := colPos[responseName]; !ok {
			return nil, fmt.Errorf("dataset/csv: header is missing response column %q", responseName)
		}
	}

	return build(cr, cols, colPos, responseName)
}

func build(cr *csv.Reader, cols []feature.ColumnSpec, colPos map[string]int, responseName string) (*dataset.Matrix, error) {
	bld, err := dataset.NewBuilder(cols, responseName)
	if err != nil {
		return nil, err
	}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset/csv: reading row %d: %v", line, err)
		}
		values := make(map[string]string, len(cols))
		for _, c := range cols {
			if c.Name == responseName {
				continue
			}
			values[c.Name] = row[colPos[c.Name]]
		}
		var responseValue string
		if responseName != "" {
			responseValue = row[colPos[responseName]]
		}
		if err := bld.AddRow(values, responseValue); err != nil {
			return nil, fmt.Errorf("dataset/csv: row %d: %v", line, err)
		}
	}
	return bld.Matrix(), nil
}

// ReadMatrixFromFile opens filepath (or reads stdin if filepath is empty)
// and delegates to ReadMatrix.
func ReadMatrixFromFile(filepath string, cols []feature.ColumnSpec, responseName string) (*dataset.Matrix, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("dataset/csv: opening %s: %v", filepath, err)
		}
		defer f.Close()
	}
	m, err := ReadMatrix(f, cols, responseName)
	if err != nil {
		return nil, fmt.Errorf("dataset/csv: parsing %s: %v", filepath, err)
	}
	return m, nil
}

// WriteRow writes a single prediction-batch row (no response column) for
// manual inspection or round-tripping through ReadMatrix.
func WriteRow(w io.Writer, cols []feature.ColumnSpec, values []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write(values); err != nil {
		return fmt.Errorf("dataset/csv: writing row: %v", err)
	}
	return cw.Error()
}
