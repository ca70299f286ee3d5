// Package forest implements the immutable, contiguous packed forest:
// parallel predictor/split/bump arrays shared across all trees, plus
// per-tree origin and factor-bit offset tables. Builder (builder.go) is
// the sole producer of a Forest; once built it is read-only and safe for
// concurrent prediction.
package forest

import "fmt"

// Forest is the immutable packed representation consumed by the walker.
//
// Pred, Num and Bump are parallel arrays over every node of every tree,
// concatenated tree by tree. For a non-terminal node at offset o: Pred[o]
// is the splitting predictor index, Num[o] is either the numeric split
// threshold or (cast from an integer) the base offset of the node's region
// in FacBits, and Bump[o] is the offset to the left child (o+Bump[o] is the
// left child, o+Bump[o]+1 is the right child). Bump[o] == 0 marks a
// terminal, whose Num[o] carries the leaf score (regression) or category
// (classification) and whose Pred[o] is otherwise unused.
type Forest struct {
	Pred []int32
	Num  []float64
	Bump []int32

	TreeOrigin []int32 // len NTree; TreeOrigin[0] == 0
	FacOff     []int32 // len NTree; start of each tree's region in FacBits
	FacBits    []int32 // widened factor-split bits, one int32 per bit

	PredInfo []float64 // len nPred; accumulated, scaled information gain

	NTree int
}

// ErrCorruptForest is returned by Validate (and may be wrapped with more
// context) when a packed forest fails its structural invariants.
var ErrCorruptForest = fmt.Errorf("forest: corrupt forest")

// TreeOriginEnd returns the offset just past tree t's region in Pred/Num/Bump.
func (f *Forest) TreeOriginEnd(t int) int32 {
	if t+1 < len(f.TreeOrigin) {
		return f.TreeOrigin[t+1]
	}
	return int32(len(f.Pred))
}

// FacOffEnd returns the offset just past tree t's region in FacBits.
func (f *Forest) FacOffEnd(t int) int32 {
	if t+1 < len(f.FacOff) {
		return f.FacOff[t+1]
	}
	return int32(len(f.FacBits))
}

// Validate checks the packed-forest invariants: every non-terminal's Bump
// is positive and its right child lies strictly within its own tree's
// region, and Pred indices are sane. It is the walker's first line of
// defense against a corrupt or truncated forest.
func (f *Forest) Validate(nPred int) error {
	if len(f.Pred) != len(f.Num) || len(f.Pred) != len(f.Bump) {
		return fmt.Errorf("%w: parallel array length mismatch pred=%d num=%d bump=%d", ErrCorruptForest, len(f.Pred), len(f.Num), len(f.Bump))
	}
	if len(f.TreeOrigin) != f.NTree {
		return fmt.Errorf("%w: treeOrigin length %d does not match NTree %d", ErrCorruptForest, len(f.TreeOrigin), f.NTree)
	}
	for t := 0; t < f.NTree; t++ {
		start := int(f.TreeOrigin[t])
		end := int(f.TreeOriginEnd(t))
		if start < 0 || end > len(f.Pred) || start > end {
			return fmt.Errorf("%w: tree %d region [%d,%d) out of bounds (forest size %d)", ErrCorruptForest, t, start, end, len(f.Pred))
		}
		for o := start; o < end; o++ {
			if f.Bump[o] == 0 {
				continue
			}
			if f.Bump[o] < 1 {
				return fmt.Errorf("%w: node %d has non-positive bump %d", ErrCorruptForest, o, f.Bump[o])
			}
			if f.Pred[o] < 0 || int(f.Pred[o]) >= nPred {
				return fmt.Errorf("%w: node %d has out-of-range predictor %d", ErrCorruptForest, o, f.Pred[o])
			}
			rh := o + int(f.Bump[o]) + 1
			if rh >= end {
				return fmt.Errorf("%w: node %d's right child %d falls outside tree region [%d,%d)", ErrCorruptForest, o, rh, start, end)
			}
		}
	}
	return nil
}
