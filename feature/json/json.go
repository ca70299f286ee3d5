// Package json encodes and decodes feature.ColumnSpec declarations as JSON,
// the sibling representation to feature/yaml for front ends that already
// speak JSON (the dataset/json bridge).
package json

import (
	"encoding/json"
	"fmt"

	"github.com/mjuarezm/Arborist/feature"
)

type jsonColumn struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Levels []string `json:"levels,omitempty"`
}

// Marshal encodes specs as a JSON array of column declarations.
func Marshal(specs []feature.ColumnSpec) ([]byte, error) {
	out := make([]jsonColumn, len(specs))
	for i, s := range specs {
		out[i] = jsonColumn{Name: s.Name, Kind: s.Kind.String(), Levels: s.Levels}
	}
	return json.Marshal(out)
}

// Unmarshal decodes a JSON array of column declarations produced by
// Marshal into a slice of feature.ColumnSpec, validated with
// feature.Validate before it is returned.
func Unmarshal(data []byte) ([]feature.ColumnSpec, error) {
	var in []jsonColumn
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding json columns: %v", err)
	}
	specs := make([]feature.ColumnSpec, len(in))
	for i, c := range in {
		var kind feature.Kind
		switch c.Kind {
		case "numeric":
			kind = feature.Numeric
		case "factor":
			kind = feature.Factor
		default:
			return nil, fmt.Errorf("decoding json columns: unknown kind %q for column %q", c.Kind, c.Name)
		}
		specs[i] = feature.ColumnSpec{Name: c.Name, Kind: kind, Levels: c.Levels}
	}
	if err := feature.Validate(specs); err != nil {
		return nil, err
	}
	return specs, nil
}
