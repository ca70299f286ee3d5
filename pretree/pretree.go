// Package pretree implements the mutable, per-tree growth scratchpad: a
// grow-doubling node vector, a tail-appended factor-split bitset, and the
// sample-to-node map a level's split candidates replay into as they're
// accepted.
package pretree

import (
	"fmt"

	"github.com/mjuarezm/Arborist/bagmap"
)

// NoChild is the lhId sentinel recorded on a still-terminal node.
const NoChild = -1

type node struct {
	lhId     int
	predIdx  int
	splitVal float64
	info     float64
}

func (n *node) isTerminal() bool { return n.lhId == NoChild }

// RankValuer translates a predictor's rank position back to the observed
// value at that rank, letting PreTree compute a numeric split's midpoint
// threshold without owning the presorted column data itself (rank-ordered
// column storage remains an external collaborator).
type RankValuer interface {
	ValueAt(predIdx, rank int) float64
}

// Replayer relabels sample2PT entries for a sorted sub-extent of a
// predictor's staged samples and reports the sum of their response values.
// Implemented by the external staged-sample collaborator.
type Replayer interface {
	Replay(sample2PT []int, predIdx, bufferBit, start, end, newPtID int) float64
}

// Scorer fills in leaf scores (regression mean or response category) for
// every terminal node, reading the final sample-to-node assignment.
// Implemented by the external response-aggregation collaborator.
type Scorer interface {
	Scores(sample2PT []int, height int, outPred []int32, outNum []float64)
}

// PreTree is the mutable, grow-only scratchpad for a single tree under
// construction.
type PreTree struct {
	nodeVec []node
	height  int

	leafCount int

	inBag     *bagmap.RowBits
	bagCount  int
	sample2PT []int

	splitBits     []bool
	bitLength     int
	treeBitOffset int

	nRow       int
	maxFacCard int

	rankValuer RankValuer
}

// New builds a PreTree for a tree whose in-bag rows are given by bagRows
// (true at sampled rows), with bagCount the number of sampled rows
// (sample2PT is sized to match). est supplies the initial node-vector and
// factor-bitset sizing; rv resolves numeric split midpoints from ranks.
func New(est *Estimator, nRow, maxFacCard int, bagRows []bool, rv RankValuer) (*PreTree, error) {
	if nRow != len(bagRows) {
		return nil, fmt.Errorf("pretree: bagRows length %d does not match nRow %d", len(bagRows), nRow)
	}
	heightEst := est.Height()
	pt := &PreTree{
		nodeVec:    make([]node, heightEst),
		height:     1,
		leafCount:  1,
		nRow:       nRow,
		maxFacCard: maxFacCard,
		rankValuer: rv,
	}
	pt.nodeVec[0] = node{lhId: NoChild}

	ib := bagmap.NewRowBits(nRow)
	bagCount := 0
	for row, in := range bagRows {
		if in {
			ib.Set(row)
			bagCount++
		}
	}
	pt.inBag = ib
	pt.bagCount = bagCount
	pt.sample2PT = make([]int, bagCount)

	if maxFacCard > 0 {
		pt.bitLength = heightEst * maxFacCard
		pt.splitBits = make([]bool, pt.bitLength)
	}
	return pt, nil
}

// Height returns the current node count (the high watermark of the grow
// loop, including both terminals and non-terminals).
func (pt *PreTree) Height() int { return pt.height }

// LeafCount returns the number of currently-terminal nodes below height.
func (pt *PreTree) LeafCount() int { return pt.leafCount }

// BagCount returns the number of in-bag rows sampled for this tree.
func (pt *PreTree) BagCount() int { return pt.bagCount }

// Sample2PT exposes the current sample-to-node-id map so SplitSig's replay
// pass can read and external collaborators (presort, run manager) can stage
// candidates against it. Callers must not resize the returned slice.
func (pt *PreTree) Sample2PT() []int { return pt.sample2PT }

// TreeBitWidth returns the number of factor-split bits accumulated so far.
func (pt *PreTree) TreeBitWidth() int { return pt.treeBitOffset }

// InBag exposes the row-indexed in-bag bitmap so bagmap.BagMap.Ingest can
// transpose it onto the tree-indexed forest-wide map.
func (pt *PreTree) InBag() *bagmap.RowBits { return pt.inBag }

// growNodes doubles the node vector if the next need nodes would overflow
// it.
func (pt *PreTree) growNodes(need int) {
	if pt.height+need <= len(pt.nodeVec) {
		return
	}
	next := make([]node, 2*len(pt.nodeVec))
	copy(next, pt.nodeVec[:pt.height])
	pt.nodeVec = next
}

// growBits doubles the factor-split bitset if writing facCard more bits at
// the current offset would overflow it.
func (pt *PreTree) growBits(facCard int) {
	if pt.treeBitOffset+facCard <= pt.bitLength {
		return
	}
	newLen := pt.bitLength
	if newLen == 0 {
		newLen = pt.maxFacCard
		if newLen == 0 {
			newLen = facCard
		}
	}
	for pt.treeBitOffset+facCard > newLen {
		newLen <<= 1
	}
	next := make([]bool, newLen)
	copy(next, pt.splitBits[:pt.treeBitOffset])
	pt.splitBits = next
	pt.bitLength = newLen
}

// TerminalOffspring speculatively appends two terminal nodes as children of
// parID, which must currently be terminal, and returns their ids.
func (pt *PreTree) TerminalOffspring(parID int) (lhID, rhID int) {
	pt.growNodes(2)
	lhID = pt.height
	pt.nodeVec[parID].lhId = lhID
	pt.nodeVec[lhID] = node{lhId: NoChild}
	pt.height++

	rhID = pt.height
	pt.nodeVec[rhID] = node{lhId: NoChild}
	pt.height++

	pt.leafCount += 2
	return lhID, rhID
}

// NonTerminal marks an existing terminal node as a split, decrementing
// leafCount. It must only be called once per node, after TerminalOffspring
// has already reserved that node's children.
func (pt *PreTree) NonTerminal(id int, info, splitVal float64, predIdx int) {
	n := &pt.nodeVec[id]
	if n.lhId == NoChild {
		panic(fmt.Sprintf("pretree: NonTerminal called on node %d with no reserved offspring", id))
	}
	n.info = info
	n.splitVal = splitVal
	n.predIdx = predIdx
	pt.leafCount--
}

// NonTerminalNum reserves offspring for a numeric split at ptID, computes
// the split threshold as the midpoint between the values at ranks rkLow and
// rkHigh, and records the split. It returns the new left/right child ids.
func (pt *PreTree) NonTerminalNum(info float64, predIdx, rkLow, rkHigh, ptID int) (lhID, rhID int) {
	lo := pt.rankValuer.ValueAt(predIdx, rkLow)
	hi := pt.rankValuer.ValueAt(predIdx, rkHigh)
	mid := (lo + hi) / 2
	lhID, rhID = pt.TerminalOffspring(ptID)
	pt.NonTerminal(ptID, info, mid, predIdx)
	return lhID, rhID
}

// NonTerminalFac reserves offspring for a factor split at ptID and claims a
// facCard-wide region of the factor-split bitset for it, recording the
// region's base offset (cast to float64) as the node's splitVal, so the
// offset rides through the same field a numeric split uses for its
// threshold.
func (pt *PreTree) NonTerminalFac(info float64, predIdx, facCard, ptID int) (lhID, rhID int) {
	pt.growBits(facCard)
	offset := pt.treeBitOffset
	pt.treeBitOffset += facCard

	lhID, rhID = pt.TerminalOffspring(ptID)
	pt.NonTerminal(ptID, info, float64(offset), predIdx)
	return lhID, rhID
}

// LHBit marks rank as going left at the factor split previously recorded at
// node id via NonTerminalFac.
func (pt *PreTree) LHBit(id, rank int) {
	base := int(pt.nodeVec[id].splitVal)
	pt.splitBits[base+rank] = true
}

// Replay relabels sample2PT for every sample whose position in predIdx's
// bufferBit-selected sorted view falls in [start, end], and returns the sum
// of their response values.
func (pt *PreTree) Replay(rep Replayer, predIdx, bufferBit, start, end, newPtID int) float64 {
	return rep.Replay(pt.sample2PT, predIdx, bufferBit, start, end, newPtID)
}

// ConsumeNodes emits the finished tree's dense node arrays: predictor index
// (or leaf category) in outPred, split value (or leaf score) in outNum, and
// left-child bump (0 for leaves) in outBump. scorer fills in leaf entries of
// outPred/outNum before the terminal/non-terminal split is overlaid.
func (pt *PreTree) ConsumeNodes(scorer Scorer, outPred []int32, outNum []float64, outBump []int32) {
	scorer.Scores(pt.sample2PT, pt.height, outPred, outNum)
	for idx := 0; idx < pt.height; idx++ {
		n := &pt.nodeVec[idx]
		if n.lhId != NoChild {
			outPred[idx] = int32(n.predIdx)
			outNum[idx] = n.splitVal
			outBump[idx] = int32(n.lhId - idx)
		} else {
			outBump[idx] = 0
		}
	}
}

// ConsumeSplitBits widens the bool bitset into outBits (length
// TreeBitWidth()) and frees the source.
func (pt *PreTree) ConsumeSplitBits(outBits []int32) {
	for i := 0; i < pt.treeBitOffset; i++ {
		if pt.splitBits[i] {
			outBits[i] = 1
		}
	}
	pt.splitBits = nil
}
