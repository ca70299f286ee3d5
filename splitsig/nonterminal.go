package splitsig

import "github.com/mjuarezm/Arborist/pretree"

// SamplePred is the subset of the external SamplePred collaborator's
// interface SplitSig needs: bracketing the ranks that straddle a numeric
// split's midpoint threshold.
type SamplePred interface {
	pretree.Replayer
	SplitRanks(predIdx, sourceBit, boundary int) (rkLow, rkHigh int)
}

// RunSet is the external Run manager's interface for a single level's
// factor run sets: the number of runs assigned left-hand, and each run's
// rank and staged index bounds.
type RunSet interface {
	RunsLH(setIdx int32) int
	RunBounds(setIdx int32, outSlot int) (rank, runStart, runEnd int)
}

// Bottom is the external per-level frontier collaborator: it resolves the
// active double-buffer bit for a (splitIdx, predIdx) pair and owns the run
// manager for factor splits.
type Bottom interface {
	BufBit(splitIdx, predIdx int) int
	Runs() RunSet
}

// NonTerminal dispatches to the factor or numeric split implementation
// based on whether ss is a run (SetIdx >= 0) or numeric candidate, mutating
// preTree with the new split and replaying affected samples onto its new
// children. It returns the sum of the left-hand child's response values
// and the new children's pretree ids.
func (ss SSNode) NonTerminal(sp SamplePred, pt *pretree.PreTree, bottom Bottom, splitIdx, start, end, ptID int) (lhSum float64, ptLH, ptRH int) {
	if ss.SetIdx >= 0 {
		return ss.nonTerminalRun(sp, pt, bottom, splitIdx, start, end, ptID)
	}
	return ss.nonTerminalNum(sp, pt, bottom, splitIdx, start, end, ptID)
}

func (ss SSNode) nonTerminalRun(sp SamplePred, pt *pretree.PreTree, bottom Bottom, splitIdx, start, end, ptID int) (lhSum float64, ptLH, ptRH int) {
	runs := bottom.Runs()
	// By convention the scorer that wrote this SSNode sets SCount to the
	// split predictor's factor cardinality, giving NonTerminalFac the width
	// of the bit region to reserve.
	ptLH, ptRH = pt.NonTerminalFac(ss.Info, ss.PredIdx, int(ss.SCount), ptID)

	sourceBit := bottom.BufBit(splitIdx, ss.PredIdx)
	pt.Replay(sp, ss.PredIdx, sourceBit, start, end, ptRH)

	nLH := runs.RunsLH(ss.SetIdx)
	for outSlot := 0; outSlot < nLH; outSlot++ {
		rank, runStart, runEnd := runs.RunBounds(ss.SetIdx, outSlot)
		pt.LHBit(ptID, rank)
		lhSum += pt.Replay(sp, ss.PredIdx, sourceBit, runStart, runEnd, ptLH)
	}
	return lhSum, ptLH, ptRH
}

func (ss SSNode) nonTerminalNum(sp SamplePred, pt *pretree.PreTree, bottom Bottom, splitIdx, start, end, ptID int) (lhSum float64, ptLH, ptRH int) {
	sourceBit := bottom.BufBit(splitIdx, ss.PredIdx)
	rkLow, rkHigh := sp.SplitRanks(ss.PredIdx, sourceBit, start+int(ss.LHIdxCount)-1)
	ptLH, ptRH = pt.NonTerminalNum(ss.Info, ss.PredIdx, rkLow, rkHigh, ptID)

	lhSum = pt.Replay(sp, ss.PredIdx, sourceBit, start, start+int(ss.LHIdxCount)-1, ptLH)
	pt.Replay(sp, ss.PredIdx, sourceBit, start+int(ss.LHIdxCount), end, ptRH)
	return lhSum, ptLH, ptRH
}
