package forest

import (
	"fmt"

	"github.com/mjuarezm/Arborist/bagmap"
	"github.com/mjuarezm/Arborist/pretree"
	"github.com/mjuarezm/Arborist/quantile"
)

// Builder accumulates consumed pre-trees, block by block, into the parallel
// arrays a Forest packs on Finalize. It owns the forest-wide BagMap, since
// every consumed tree's in-bag rows must land on the same map.
type Builder struct {
	nTree int
	nPred int

	treeSize     []int32
	treeFacWidth []int32

	predScratch [][]int32
	numScratch  [][]float64
	bumpScratch [][]int32
	facScratch  [][]int32

	predInfoSum []float64

	bagMap *bagmap.BagMap
	sink   quantile.Sink
}

// NewBuilder allocates a Builder for a session of nTree trees over nPred
// predictors and nRow rows. sink may be nil if quantile post-processing is
// not needed.
func NewBuilder(nTree, nPred, nRow int, sink quantile.Sink) *Builder {
	return &Builder{
		nTree:        nTree,
		nPred:        nPred,
		treeSize:     make([]int32, nTree),
		treeFacWidth: make([]int32, nTree),
		predScratch:  make([][]int32, nTree),
		numScratch:   make([][]float64, nTree),
		bumpScratch:  make([][]int32, nTree),
		facScratch:   make([][]int32, nTree),
		predInfoSum:  make([]float64, nPred),
		bagMap:       bagmap.New(nTree, nRow),
		sink:         sink,
	}
}

// BagMap exposes the forest-wide in-bag bitmap being assembled, so a caller
// assembling OOB-prediction inputs doesn't need a second builder pass.
func (b *Builder) BagMap() *bagmap.BagMap { return b.bagMap }

// TreeUnit is one grown pre-tree awaiting consumption into the packed
// arrays, paired with the scorer that fills its leaf values and the tree's
// per-predictor split information sums.
type TreeUnit struct {
	Tree     *pretree.PreTree
	TreeNum  int
	Scorer   pretree.Scorer
	InfoSums []float64 // len nPred, this tree's per-predictor accumulated split info
}

// BlockConsume packs a block of finished pre-trees into the builder's
// scratch arrays. It is the serialization point after concurrent tree
// growth: every call mutates builder-owned state and must not run
// concurrently with another BlockConsume or with Finalize.
func (b *Builder) BlockConsume(block []TreeUnit) error {
	for _, u := range block {
		if u.TreeNum < 0 || u.TreeNum >= b.nTree {
			return fmt.Errorf("forest: tree number %d out of range [0,%d)", u.TreeNum, b.nTree)
		}
		pt := u.Tree
		height := pt.Height()
		outPred := make([]int32, height)
		outNum := make([]float64, height)
		outBump := make([]int32, height)
		pt.ConsumeNodes(u.Scorer, outPred, outNum, outBump)

		outBits := make([]int32, pt.TreeBitWidth())
		pt.ConsumeSplitBits(outBits)

		b.treeSize[u.TreeNum] = int32(height)
		b.treeFacWidth[u.TreeNum] = int32(len(outBits))
		b.predScratch[u.TreeNum] = outPred
		b.numScratch[u.TreeNum] = outNum
		b.bumpScratch[u.TreeNum] = outBump
		b.facScratch[u.TreeNum] = outBits

		b.bagMap.Ingest(u.TreeNum, pt.InBag())

		for predIdx, info := range u.InfoSums {
			b.predInfoSum[predIdx] += info
		}
	}
	return nil
}

// FeedQuantile forwards a leaf's (rank, sampleCount) pair to the builder's
// quantile sink, if one was configured. Neither BlockConsume, Finalize nor
// the training driver calls it, so the sink receives only the pairs passed
// here explicitly.
func (b *Builder) FeedQuantile(rank, sampleCount int) {
	if b.sink != nil {
		b.sink.Observe(rank, sampleCount)
	}
}

// Finalize computes treeOrigin/facOff as prefix sums over the consumed
// trees' sizes, concatenates every tree's scratch arrays into the packed
// forest, and scales the accumulated predictor info by tree count. It must
// only be called after every tree in [0,nTree) has been consumed.
func (b *Builder) Finalize() (*Forest, error) {
	treeOrigin := make([]int32, b.nTree)
	facOff := make([]int32, b.nTree)
	var total, totalFac int32
	for t := 0; t < b.nTree; t++ {
		if b.predScratch[t] == nil {
			return nil, fmt.Errorf("forest: tree %d was never consumed", t)
		}
		treeOrigin[t] = total
		facOff[t] = totalFac
		total += b.treeSize[t]
		totalFac += b.treeFacWidth[t]
	}

	pred := make([]int32, total)
	num := make([]float64, total)
	bump := make([]int32, total)
	facBits := make([]int32, totalFac)

	for t := 0; t < b.nTree; t++ {
		o := treeOrigin[t]
		copy(pred[o:], b.predScratch[t])
		copy(num[o:], b.numScratch[t])
		copy(bump[o:], b.bumpScratch[t])
		copy(facBits[facOff[t]:], b.facScratch[t])
	}

	predInfo := make([]float64, b.nPred)
	for i, sum := range b.predInfoSum {
		predInfo[i] = sum / float64(b.nTree)
	}

	return &Forest{
		Pred:       pred,
		Num:        num,
		Bump:       bump,
		TreeOrigin: treeOrigin,
		FacOff:     facOff,
		FacBits:    facBits,
		PredInfo:   predInfo,
		NTree:      b.nTree,
	}, nil
}
