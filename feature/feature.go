// Package feature describes predictor column metadata independently of the
// source a training matrix is loaded from: which columns are numerically
// ordered, which are bounded-cardinality factors, and what each factor's
// levels are named. dataset loaders turn a []ColumnSpec plus raw rows into
// a predictor.Table; feature/yaml and feature/json parse column metadata
// files into a []ColumnSpec.
package feature

import "fmt"

// Kind distinguishes a numerically-ordered predictor column from a
// bounded-cardinality categorical one. It mirrors predictor.Kind but lives
// at the metadata layer, before any row has been loaded.
type Kind int

const (
	Numeric Kind = iota
	Factor
)

func (k Kind) String() string {
	if k == Factor {
		return "factor"
	}
	return "numeric"
}

// ColumnSpec names one predictor column and, for factor columns, the
// category labels a loader maps to codes [0, len(Levels)).
type ColumnSpec struct {
	Name   string
	Kind   Kind
	Levels []string // len is the factor's cardinality; empty for Numeric
}

// Cardinality returns the number of distinct levels for a factor column, or
// 0 for a numeric one.
func (c ColumnSpec) Cardinality() int { return len(c.Levels) }

// LevelCode returns the code a loader should assign to a factor value, and
// false if value is not one of c's declared levels.
func (c ColumnSpec) LevelCode(value string) (int, bool) {
	for i, l := range c.Levels {
		if l == value {
			return i, true
		}
	}
	return 0, false
}

// Split partitions specs into numeric and factor groups, in the order
// predictor.Table expects: all numeric predictors first (global indices
// [0, nPredNum)), then all factor predictors (global indices
// [nPredNum, nPredNum+nPredFac)).
func Split(specs []ColumnSpec) (numeric, factor []ColumnSpec) {
	for _, s := range specs {
		if s.Kind == Factor {
			factor = append(factor, s)
		} else {
			numeric = append(numeric, s)
		}
	}
	return
}

// Validate checks that every factor column declares at least two levels and
// that no two columns share a name.
func Validate(specs []ColumnSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if seen[s.Name] {
			return fmt.Errorf("feature: duplicate column name %q", s.Name)
		}
		seen[s.Name] = true
		if s.Kind == Factor && len(s.Levels) < 2 {
			return fmt.Errorf("feature: factor column %q needs at least 2 levels, got %d", s.Name, len(s.Levels))
		}
	}
	return nil
}
