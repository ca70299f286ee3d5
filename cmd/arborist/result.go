package main

import (
	"github.com/mjuarezm/Arborist/dataset"
	"github.com/mjuarezm/Arborist/forest"
	"github.com/mjuarezm/Arborist/predictor"
	"github.com/mjuarezm/Arborist/train"
)

// forestResult bundles a freshly trained forest with the session state
// needed to evaluate it (OOB or otherwise) without re-loading the dataset:
// the matrix it was grown from, the predictor.Table view of it, and the
// Driver that grew it (for its BagMap).
type forestResult struct {
	forest *forest.Forest
	matrix *dataset.Matrix
	table  *predictor.Table
	driver *train.Driver
}
