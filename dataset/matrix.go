// Package dataset is the front-end bridge: its loaders read column data and
// a response vector from an external source (CSV, SQL, MongoDB) into a
// Matrix, whose Table method yields the predictor.Table. Training/prediction
// themselves know nothing about where rows came from; Matrix is the one
// shape every loader converges on.
package dataset

import (
	"fmt"
	"strconv"

	"github.com/mjuarezm/Arborist/feature"
	"github.com/mjuarezm/Arborist/predictor"
)

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Matrix is the loaded, in-memory form of a training or prediction input:
// every declared column's values, laid out exactly as predictor.Table
// expects (predictor-major, row the faster-moving index).
type Matrix struct {
	Columns  []feature.ColumnSpec
	NRow     int
	NumBase  []float64 // len nPredNum*NRow
	FacBase  []int     // len nPredFac*NRow
	FacCard  []int     // len nPredFac

	// Response holds the label column, absent for a prediction-only batch.
	HasResponse    bool
	Y              []float64 // len NRow, for a numeric (regression) response
	Ctg            []int     // len NRow, for a categorical (classification) response
	CtgWidth       int
	ResponseLevels []string // classification category names, index == code
}

// Table builds the predictor.Table m's column data feeds training and
// prediction alike.
func (m *Matrix) Table() (*predictor.Table, error) {
	return predictor.New(m.NRow, m.NumBase, m.FacBase, m.FacCard)
}

// Builder accumulates rows column-by-column as a loader streams them, then
// yields a Matrix. Loaders hold one Builder per load.
type Builder struct {
	specs    []feature.ColumnSpec
	numSpecs []feature.ColumnSpec
	facSpecs []feature.ColumnSpec
	numIdx   map[string]int
	facIdx   map[string]int

	numCols [][]float64
	facCols [][]int
	nRow    int

	responseSpec *feature.ColumnSpec
	y            []float64
	ctg          []int
}

// NewBuilder starts a Builder for the declared columns. responseName names
// the label column among specs (empty for a prediction-only batch).
func NewBuilder(specs []feature.ColumnSpec, responseName string) (*Builder, error) {
	if err := feature.Validate(specs); err != nil {
		return nil, err
	}
	numSpecs, facSpecs := feature.Split(predictorSpecs(specs, responseName))
	b := &Builder{
		specs:    specs,
		numSpecs: numSpecs,
		facSpecs: facSpecs,
		numIdx:   make(map[string]int, len(numSpecs)),
		facIdx:   make(map[string]int, len(facSpecs)),
		numCols:  make([][]float64, len(numSpecs)),
		facCols:  make([][]int, len(facSpecs)),
	}
	for i, s := range numSpecs {
		b.numIdx[s.Name] = i
	}
	for i, s := range facSpecs {
		b.facIdx[s.Name] = i
	}
	for _, s := range specs {
		if s.Name == responseName {
			rs := s
			b.responseSpec = &rs
		}
	}
	if responseName != "" && b.responseSpec == nil {
		return nil, fmt.Errorf("dataset: response column %q not declared among columns", responseName)
	}
	return b, nil
}

// predictorSpecs drops the response column out of the set used to size the
// predictor.Table — the response is carried separately on Matrix.
func predictorSpecs(specs []feature.ColumnSpec, responseName string) []feature.ColumnSpec {
	if responseName == "" {
		return specs
	}
	out := make([]feature.ColumnSpec, 0, len(specs))
	for _, s := range specs {
		if s.Name != responseName {
			out = append(out, s)
		}
	}
	return out
}

// AddRow appends one row's values, keyed by column name. A factor value
// not among its column's declared levels is an error; a response value is
// parsed according to the response column's kind.
func (b *Builder) AddRow(values map[string]string, responseValue string) error {
	for _, s := range b.numSpecs {
		v, err := parseFloat(values[s.Name])
		if err != nil {
			return fmt.Errorf("dataset: column %q row %d: %v", s.Name, b.nRow, err)
		}
		b.numCols[b.numIdx[s.Name]] = append(b.numCols[b.numIdx[s.Name]], v)
	}
	for _, s := range b.facSpecs {
		code, ok := s.LevelCode(values[s.Name])
		if !ok {
			return fmt.Errorf("dataset: column %q row %d: unknown level %q", s.Name, b.nRow, values[s.Name])
		}
		b.facCols[b.facIdx[s.Name]] = append(b.facCols[b.facIdx[s.Name]], code)
	}
	if b.responseSpec != nil {
		if b.responseSpec.Kind == feature.Factor {
			code, ok := b.responseSpec.LevelCode(responseValue)
			if !ok {
				return fmt.Errorf("dataset: response row %d: unknown category %q", b.nRow, responseValue)
			}
			b.ctg = append(b.ctg, code)
		} else {
			v, err := parseFloat(responseValue)
			if err != nil {
				return fmt.Errorf("dataset: response row %d: %v", b.nRow, err)
			}
			b.y = append(b.y, v)
		}
	}
	b.nRow++
	return nil
}

// Matrix yields the Matrix accumulated so far.
func (b *Builder) Matrix() *Matrix {
	numBase := make([]float64, 0, len(b.numSpecs)*b.nRow)
	for _, col := range b.numCols {
		numBase = append(numBase, col...)
	}
	facBase := make([]int, 0, len(b.facSpecs)*b.nRow)
	facCard := make([]int, len(b.facSpecs))
	for i, s := range b.facSpecs {
		facCard[i] = s.Cardinality()
	}
	for _, col := range b.facCols {
		facBase = append(facBase, col...)
	}
	predSpecs := make([]feature.ColumnSpec, 0, len(b.numSpecs)+len(b.facSpecs))
	predSpecs = append(predSpecs, b.numSpecs...)
	predSpecs = append(predSpecs, b.facSpecs...)

	m := &Matrix{
		Columns: predSpecs,
		NRow:    b.nRow,
		NumBase: numBase,
		FacBase: facBase,
		FacCard: facCard,
	}
	if b.responseSpec != nil {
		m.HasResponse = true
		if b.responseSpec.Kind == feature.Factor {
			m.Ctg = b.ctg
			m.CtgWidth = b.responseSpec.Cardinality()
			m.ResponseLevels = b.responseSpec.Levels
		} else {
			m.Y = b.y
		}
	}
	return m
}
