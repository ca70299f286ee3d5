// Package json encodes and decodes a dataset.Matrix as JSON, so a loaded
// training or prediction matrix can be cached or shipped between processes
// without re-reading its original CSV/SQL/MongoDB source.
package json

import (
	"encoding/json"
	"fmt"

	featurejson "github.com/mjuarezm/Arborist/feature/json"

	"github.com/mjuarezm/Arborist/dataset"
)

type wireMatrix struct {
	Columns        json.RawMessage `json:"columns"`
	NRow           int             `json:"nRow"`
	NumBase        []float64       `json:"numBase,omitempty"`
	FacBase        []int           `json:"facBase,omitempty"`
	FacCard        []int           `json:"facCard,omitempty"`
	HasResponse    bool            `json:"hasResponse"`
	Y              []float64       `json:"y,omitempty"`
	Ctg            []int           `json:"ctg,omitempty"`
	CtgWidth       int             `json:"ctgWidth,omitempty"`
	ResponseLevels []string        `json:"responseLevels,omitempty"`
}

// Marshal encodes m as JSON.
func Marshal(m *dataset.Matrix) ([]byte, error) {
	cols, err := featurejson.Marshal(m.Columns)
	if err != nil {
		return nil, fmt.Errorf("dataset/json: encoding columns: %v", err)
	}
	wm := wireMatrix{
		Columns:        cols,
		NRow:           m.NRow,
		NumBase:        m.NumBase,
		FacBase:        m.FacBase,
		FacCard:        m.FacCard,
		HasResponse:    m.HasResponse,
		Y:              m.Y,
		Ctg:            m.Ctg,
		CtgWidth:       m.CtgWidth,
		ResponseLevels: m.ResponseLevels,
	}
	return json.Marshal(wm)
}

// Unmarshal decodes a JSON-encoded dataset.Matrix produced by Marshal.
func Unmarshal(data []byte) (*dataset.Matrix, error) {
	var wm wireMatrix
	if err := json.Unmarshal(data, &wm); err != nil {
		return nil, fmt.Errorf("dataset/json: decoding matrix: %v", err)
	}
	cols, err := featurejson.Unmarshal(wm.Columns)
	if err != nil {
		return nil, fmt.Errorf("dataset/json: decoding columns: %v", err)
	}
	return &dataset.Matrix{
		Columns:        cols,
		NRow:           wm.NRow,
		NumBase:        wm.NumBase,
		FacBase:        wm.FacBase,
		FacCard:        wm.FacCard,
		HasResponse:    wm.HasResponse,
		Y:              wm.Y,
		Ctg:            wm.Ctg,
		CtgWidth:       wm.CtgWidth,
		ResponseLevels: wm.ResponseLevels,
	}, nil
}
