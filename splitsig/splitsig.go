// Package splitsig implements the per-level split-signature table and the
// argmax selection: a scoring pass writes one SSNode candidate per (level,
// predictor) slot, and ArgMax picks the admissible winner for each node.
package splitsig

import "math"

// SSNode is the minimal record of a candidate split's shape and score.
// SetIdx is -1 for a numeric candidate, or the run-set index a factor
// candidate's left-hand partition was built from.
type SSNode struct {
	Info       float64
	PredIdx    int
	SetIdx     int32
	SCount     uint32
	LHIdxCount uint32
}

func unsetNode(predIdx int) SSNode {
	return SSNode{Info: math.Inf(-1), PredIdx: predIdx, SetIdx: -1}
}

// Table is a dense (levelIdx, predIdx)-indexed matrix of SSNode, alive for
// exactly one level of tree growth at a time.
type Table struct {
	nPred      int
	splitCount int
	nodes      []SSNode
}

// LevelInit allocates a fresh table for splitCount nodes at the current
// level, with every candidate initialized to the "no candidate" sentinel
// (Info = -Inf).
func LevelInit(nPred, splitCount int) *Table {
	nodes := make([]SSNode, nPred*splitCount)
	for i := range nodes {
		nodes[i] = unsetNode(i / splitCount)
	}
	return &Table{nPred: nPred, splitCount: splitCount, nodes: nodes}
}

func (t *Table) index(levelIdx, predIdx int) int {
	return predIdx*t.splitCount + levelIdx
}

// Write stores one candidate split at (levelIdx, predIdx). Only candidates
// with Info > 0 are eligible to win ArgMax.
func (t *Table) Write(levelIdx, predIdx int, setIdx int32, sCount, lhIdxCount uint32, info float64) {
	t.nodes[t.index(levelIdx, predIdx)] = SSNode{
		Info:       info,
		PredIdx:    predIdx,
		SetIdx:     setIdx,
		SCount:     sCount,
		LHIdxCount: lhIdxCount,
	}
}

// ArgMax scans every predictor's candidate at levelIdx and returns the one
// with the largest Info strictly greater than gainFloor, or ok=false if none
// qualifies. Ties are broken by first-wins on predictor index.
func (t *Table) ArgMax(levelIdx int, gainFloor float64) (SSNode, bool) {
	var best SSNode
	found := false
	floor := gainFloor
	for predIdx := 0; predIdx < t.nPred; predIdx++ {
		cand := t.nodes[t.index(levelIdx, predIdx)]
		if cand.Info > floor {
			best = cand
			floor = cand.Info
			found = true
		}
	}
	return best, found
}
