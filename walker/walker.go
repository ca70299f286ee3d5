// Package walker implements the prediction-time descent over a packed
// forest: row-by-row, tree-by-tree traversal from each tree's root to a
// leaf, OOB-aware aggregation into a regression mean or a classification
// census/vote, and corrupt-forest detection.
package walker

import (
	"fmt"

	"github.com/mjuarezm/Arborist/bagmap"
	"github.com/mjuarezm/Arborist/forest"
	"github.com/mjuarezm/Arborist/predictor"
)

// NoLeaf is the sentinel leaf offset recorded for a row skipped because its
// tree bagged that row and useBag is in effect.
const NoLeaf = -1

// Walker descends a packed forest against a predictor table. It holds no
// mutable state of its own; every method is safe to call concurrently from
// multiple rows' workers.
type Walker struct {
	f    *forest.Forest
	pt   *predictor.Table
	bag  *bagmap.BagMap
	mode mode
}

type mode int

const (
	modeMixed mode = iota
	modeNumericOnly
	modeFactorOnly
)

// New builds a Walker over f for rows described by pt. bag may be nil; with
// a nil bag, Leaves and the Predict methods return an error when useBag is
// true.
func New(f *forest.Forest, pt *predictor.Table, bag *bagmap.BagMap) *Walker {
	m := modeMixed
	switch {
	case pt.NPredFac() == 0:
		m = modeNumericOnly
	case pt.NPredNum() == 0:
		m = modeFactorOnly
	}
	return &Walker{f: f, pt: pt, bag: bag, mode: m}
}

// ErrCorruptForest is returned when a descent step lands outside the
// forest's node arrays.
var ErrCorruptForest = forest.ErrCorruptForest

func (w *Walker) descendNumericOnly(tree, row int32) (int32, error) {
	origin := w.f.TreeOrigin[tree]
	end := w.f.TreeOriginEnd(int(tree))
	idx := origin
	for w.f.Bump[idx] != 0 {
		p := w.f.Pred[idx]
		if int(p) < 0 || int(p) >= w.pt.NPred() {
			return 0, fmt.Errorf("%w: node %d references out-of-range predictor %d", ErrCorruptForest, idx, p)
		}
		rowVal := w.pt.NumAt(int(p), int(row))
		b := w.f.Bump[idx]
		if rowVal <= w.f.Num[idx] {
			idx += b
		} else {
			idx += b + 1
		}
		if idx < origin || idx >= end {
			return 0, fmt.Errorf("%w: descent left tree region at node %d", ErrCorruptForest, idx)
		}
	}
	return idx, nil
}

func (w *Walker) descendFactorOnly(tree, row int32) (int32, error) {
	origin := w.f.TreeOrigin[tree]
	end := w.f.TreeOriginEnd(int(tree))
	facOff := w.f.FacOff[tree]
	idx := origin
	for w.f.Bump[idx] != 0 {
		p := w.f.Pred[idx]
		facIdx := w.pt.FacIdx(int(p))
		if facIdx < 0 {
			return 0, fmt.Errorf("%w: factor-only walk hit numeric predictor %d at node %d", ErrCorruptForest, p, idx)
		}
		code := w.pt.FacAt(facIdx, int(row))
		pos := facOff + int32(int(w.f.Num[idx])) + int32(code)
		if int(pos) < 0 || int(pos) >= len(w.f.FacBits) {
			return 0, fmt.Errorf("%w: node %d's factor-bit position %d out of range", ErrCorruptForest, idx, pos)
		}
		b := w.f.Bump[idx]
		if w.f.FacBits[pos] != 0 {
			idx += b
		} else {
			idx += b + 1
		}
		if idx < origin || idx >= end {
			return 0, fmt.Errorf("%w: descent left tree region at node %d", ErrCorruptForest, idx)
		}
	}
	return idx, nil
}

func (w *Walker) descendMixed(tree, row int32) (int32, error) {
	origin := w.f.TreeOrigin[tree]
	end := w.f.TreeOriginEnd(int(tree))
	facOff := w.f.FacOff[tree]
	idx := origin
	for w.f.Bump[idx] != 0 {
		p := w.f.Pred[idx]
		b := w.f.Bump[idx]
		var goLeft bool
		if facIdx := w.pt.FacIdx(int(p)); facIdx >= 0 {
			code := w.pt.FacAt(facIdx, int(row))
			pos := facOff + int32(int(w.f.Num[idx])) + int32(code)
			if int(pos) < 0 || int(pos) >= len(w.f.FacBits) {
				return 0, fmt.Errorf("%w: node %d's factor-bit position %d out of range", ErrCorruptForest, idx, pos)
			}
			goLeft = w.f.FacBits[pos] != 0
		} else {
			rowVal := w.pt.NumAt(int(p), int(row))
			goLeft = rowVal <= w.f.Num[idx]
		}
		if goLeft {
			idx += b
		} else {
			idx += b + 1
		}
		if idx < origin || idx >= end {
			return 0, fmt.Errorf("%w: descent left tree region at node %d", ErrCorruptForest, idx)
		}
	}
	return idx, nil
}

// descend dispatches to the specialization selected at construction.
func (w *Walker) descend(tree, row int32) (int32, error) {
	switch w.mode {
	case modeNumericOnly:
		return w.descendNumericOnly(tree, row)
	case modeFactorOnly:
		return w.descendFactorOnly(tree, row)
	default:
		return w.descendMixed(tree, row)
	}
}

// Leaves walks row against every tree, returning one leaf offset per tree
// (NoLeaf if useBag skipped it because the tree bagged that row). It is the
// shared first stage for both regression and classification aggregation.
func (w *Walker) Leaves(row int, useBag bool) ([]int32, error) {
	out := make([]int32, w.f.NTree)
	for t := 0; t < w.f.NTree; t++ {
		if useBag {
			if w.bag == nil {
				return nil, fmt.Errorf("walker: useBag requires a non-nil bag map")
			}
			if w.bag.Test(t, row) {
				out[t] = NoLeaf
				continue
			}
		}
		leaf, err := w.descend(int32(t), int32(row))
		if err != nil {
			return nil, err
		}
		out[t] = leaf
	}
	return out, nil
}

// PredictRegression aggregates row's per-tree leaves into the mean leaf
// score. treesSeen is the number of trees that contributed (leaf != NoLeaf);
// per spec, a row with treesSeen == 0 is a documented precondition
// violation left for the caller to handle, so mean is returned as NaN in
// that case rather than panicking.
func (w *Walker) PredictRegression(row int, useBag bool) (mean float64, treesSeen int, err error) {
	leaves, err := w.Leaves(row, useBag)
	if err != nil {
		return 0, 0, err
	}
	var sum float64
	for _, leaf := range leaves {
		if leaf == NoLeaf {
			continue
		}
		sum += w.f.Num[leaf]
		treesSeen++
	}
	if treesSeen == 0 {
		return nanValue(), 0, nil
	}
	return sum / float64(treesSeen), treesSeen, nil
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}

// Census is a per-row count of votes for each category, indexed by category
// code.
type Census []int

// PredictClassification aggregates row's per-tree leaves into a census of
// length ctgWidth and the majority-vote category, ties broken by the lowest
// category index.
func (w *Walker) PredictClassification(row int, useBag bool, ctgWidth int) (census Census, vote int, treesSeen int, err error) {
	leaves, err := w.Leaves(row, useBag)
	if err != nil {
		return nil, 0, 0, err
	}
	census = make(Census, ctgWidth)
	for _, leaf := range leaves {
		if leaf == NoLeaf {
			continue
		}
		ctg := int(w.f.Num[leaf])
		if ctg < 0 || ctg >= ctgWidth {
			return nil, 0, 0, fmt.Errorf("%w: leaf %d category %d out of range [0,%d)", ErrCorruptForest, leaf, ctg, ctgWidth)
		}
		census[ctg]++
		treesSeen++
	}
	vote = argmaxCensus(census)
	return census, vote, treesSeen, nil
}

func argmaxCensus(census Census) int {
	best := 0
	for ctg := 1; ctg < len(census); ctg++ {
		if census[ctg] > census[best] {
			best = ctg
		}
	}
	return best
}

// ConfusionMatrix accumulates confusion[true][predicted] over a batch of
// OOB classification predictions, and reports per-class error rates.
type ConfusionMatrix struct {
	matrix   [][]int
	ctgWidth int
}

// NewConfusionMatrix allocates a zeroed ctgWidth x ctgWidth matrix.
func NewConfusionMatrix(ctgWidth int) *ConfusionMatrix {
	m := make([][]int, ctgWidth)
	for i := range m {
		m[i] = make([]int, ctgWidth)
	}
	return &ConfusionMatrix{matrix: m, ctgWidth: ctgWidth}
}

// Observe records one row's true category against its predicted vote.
func (c *ConfusionMatrix) Observe(trueCtg, predicted int) {
	c.matrix[trueCtg][predicted]++
}

// Matrix exposes the raw confusion counts.
func (c *ConfusionMatrix) Matrix() [][]int { return c.matrix }

// ClassError returns the off-diagonal row-sum fraction for ctg, or 0 if no
// rows of that true category were observed.
func (c *ConfusionMatrix) ClassError(ctg int) float64 {
	row := c.matrix[ctg]
	var total, off int
	for predicted, n := range row {
		total += n
		if predicted != ctg {
			off += n
		}
	}
	if total == 0 {
		return 0
	}
	return float64(off) / float64(total)
}

// RegressionMSE computes the OOB mean squared error across a batch of
// (prediction, truth) pairs, dividing by len(truth): the number of pairs
// passed, which is nRow only when the caller passes every row.
func RegressionMSE(predicted, truth []float64) float64 {
	var sum float64
	for i, p := range predicted {
		d := p - truth[i]
		sum += d * d
	}
	return sum / float64(len(truth))
}
