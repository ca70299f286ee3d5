package sampling

import (
	"github.com/mjuarezm/Arborist/predictor"
	"github.com/mjuarezm/Arborist/splitsig"
)

// ResponseValues hands a sample's response back as a float64: the actual
// value for regression, or the category code for classification (used only
// to order split candidates, never as the final leaf value).
type ResponseValues interface {
	ValueAt(sampIdx int) float64
}

// Staged holds the per-tree structures built once from a bag draw: the
// row<->sampIdx mapping, and for every numeric predictor the bagged rows in
// ascending value order. NodeView restages a specific frontier node's
// extent from these without re-sorting.
type Staged struct {
	pt        *predictor.Table
	rr        *RowRank
	sampRows  []int32
	rowToSamp map[int32]int32
	numOrder  [][]int32 // per numeric predictor: sampIdx in ascending value order
}

// NewStaged builds a Staged view for one tree's bag draw.
func NewStaged(pt *predictor.Table, rr *RowRank, sampRows []int32) *Staged {
	rowToSamp := make(map[int32]int32, len(sampRows))
	for sampIdx, row := range sampRows {
		rowToSamp[row] = int32(sampIdx)
	}
	numOrder := make([][]int32, pt.NPredNum())
	for p := range numOrder {
		order := make([]int32, 0, len(sampRows))
		for rank := 0; rank < pt.NRow(); rank++ {
			row := rr.Row(p, rank)
			if sampIdx, ok := rowToSamp[row]; ok {
				order = append(order, sampIdx)
			}
		}
		numOrder[p] = order
	}
	return &Staged{pt: pt, rr: rr, sampRows: sampRows, rowToSamp: rowToSamp, numOrder: numOrder}
}

// RankValuer exposes the presort this Staged view was built from, so it can
// be handed to pretree.New directly.
func (s *Staged) RankValuer() *RowRank { return s.rr }

// NodeView is the staged sample/rank view for one frontier node: the subset
// of each predictor's bagged samples currently assigned to that node,
// ordered for splitting. It implements splitsig.SamplePred and
// splitsig.Bottom against a single, always-current buffer (bufferBit is
// unused — restaging recomputes fresh for each node rather than
// double-buffering in place).
type NodeView struct {
	staged *Staged
	resp   ResponseValues

	numEntries [][]int32      // per numeric predictor, filtered to this node
	facFlat    [][]int32      // per factor predictor, filtered+grouped by category
	facBounds  [][][2]int     // per factor predictor, per category: [start,end] into facFlat
	meanOrder  map[int][]int  // per factor predictor: categories ordered by mean response, set by the most recent factor-split score
	nodeSize   int
}

// BuildNodeView filters staged's presorted sample order down to the rows
// sample2PT currently assigns to nodeID.
func BuildNodeView(staged *Staged, resp ResponseValues, sample2PT []int, nodeID int) *NodeView {
	numEntries := make([][]int32, len(staged.numOrder))
	nodeSize := 0
	for p, order := range staged.numOrder {
		out := make([]int32, 0, len(order))
		for _, s := range order {
			if sample2PT[s] == nodeID {
				out = append(out, s)
			}
		}
		numEntries[p] = out
		if p == 0 {
			nodeSize = len(out)
		}
	}

	nPredFac := staged.pt.NPredFac()
	facFlat := make([][]int32, nPredFac)
	facBounds := make([][][2]int, nPredFac)
	for f := 0; f < nPredFac; f++ {
		card := staged.pt.FacCard(f)
		buckets := make([][]int32, card)
		for sampIdx, row := range staged.sampRows {
			if sample2PT[sampIdx] != nodeID {
				continue
			}
			code := staged.pt.FacAt(f, int(row))
			buckets[code] = append(buckets[code], int32(sampIdx))
		}
		flat := make([]int32, 0, cap(buckets))
		bounds := make([][2]int, card)
		for c := 0; c < card; c++ {
			start := len(flat)
			flat = append(flat, buckets[c]...)
			bounds[c] = [2]int{start, len(flat) - 1}
		}
		facFlat[f] = flat
		facBounds[f] = bounds
		if nPredFac > 0 && staged.pt.NPredNum() == 0 && f == 0 {
			nodeSize = len(flat)
		}
	}

	return &NodeView{
		staged:     staged,
		resp:       resp,
		numEntries: numEntries,
		facFlat:    facFlat,
		facBounds:  facBounds,
		meanOrder:  make(map[int][]int),
		nodeSize:   nodeSize,
	}
}

// NodeSize returns the number of in-bag samples currently assigned to this
// node.
func (nv *NodeView) NodeSize() int { return nv.nodeSize }

func (nv *NodeView) entriesFor(predIdx int) []int32 {
	if facIdx := nv.staged.pt.FacIdx(predIdx); facIdx >= 0 {
		return nv.facFlat[facIdx]
	}
	return nv.numEntries[predIdx]
}

// Replay implements pretree.Replayer / splitsig.SamplePred: it relabels
// sample2PT for entries[start..end] (inclusive) of predIdx's staged view
// and returns the sum of their response values.
func (nv *NodeView) Replay(sample2PT []int, predIdx, bufferBit, start, end, newPtID int) float64 {
	entries := nv.entriesFor(predIdx)
	var sum float64
	for i := start; i <= end; i++ {
		s := entries[i]
		sample2PT[s] = newPtID
		sum += nv.resp.ValueAt(int(s))
	}
	return sum
}

// SplitRanks implements splitsig.SamplePred: given boundary, the position
// of the last left-hand entry in predIdx's numeric staged view, it returns
// the global ranks straddling the split.
func (nv *NodeView) SplitRanks(predIdx, bufferBit, boundary int) (rkLow, rkHigh int) {
	entries := nv.numEntries[predIdx]
	rowLow := nv.staged.sampRows[entries[boundary]]
	rowHigh := nv.staged.sampRows[entries[boundary+1]]
	return int(nv.staged.rr.RankOf(predIdx, rowLow)), int(nv.staged.rr.RankOf(predIdx, rowHigh))
}

// BufBit implements splitsig.Bottom: this NodeView always holds exactly one
// live buffer per predictor.
func (nv *NodeView) BufBit(splitIdx, predIdx int) int { return 0 }

// Runs implements splitsig.Bottom: NodeView is its own run set, keyed by
// SetIdx values score.go produces (predIdx packed into the high bits, run
// count into the low 8 bits).
func (nv *NodeView) Runs() splitsig.RunSet { return nv }

// RunsLH implements splitsig.RunSet: the low 8 bits of setIdx carry the number of
// categories sent left-hand.
func (nv *NodeView) RunsLH(setIdx int32) int { return int(setIdx & 0xFF) }

// RunBounds implements RunSet: recovers the source predictor from setIdx's
// high bits, then returns the outSlot-th left-hand category (by the mean-
// response order score.go computed) and its bounds in that predictor's
// staged view.
func (nv *NodeView) RunBounds(setIdx int32, outSlot int) (rank, runStart, runEnd int) {
	predIdx := int(setIdx >> 8)
	facIdx := nv.staged.pt.FacIdx(predIdx)
	order := nv.meanOrder[facIdx]
	cat := order[outSlot]
	bounds := nv.facBounds[facIdx][cat]
	return cat, bounds[0], bounds[1]
}
