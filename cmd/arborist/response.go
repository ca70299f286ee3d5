package main

import (
	"fmt"

	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/train"
)

// trainResponse projects a loaded Matrix's response column onto the
// train.Response shape a Driver is built against.
func trainResponse(m *dataset.Matrix) (train.Response, error) {
	if !m.HasResponse {
		return train.Response{}, fmt.Errorf("dataset has no response column; pass --response")
	}
	if m.Ctg != nil {
		return train.Response{Ctg: m.Ctg, CtgWidth: m.CtgWidth}, nil
	}
	return train.Response{Y: m.Y}, nil
}
