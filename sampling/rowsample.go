package sampling

import "math/rand"

// Bag draws a tree's in-bag row multiset, recording which rows were sampled
// (bagRows, suitable for pretree.New) and each bagged row in sampled order
// (sampRows, indexed by a sample's tree-local sampIdx).
type Bag struct {
	bagRows  []bool
	sampRows []int32
}

// Draw samples nRow rows. withReplacement draws nRow rows uniformly with
// replacement (the usual bootstrap), keeping each distinct row once in
// sampRows in the order it was first drawn; otherwise it draws a fixed-size
// sample of sampleSize rows without replacement, weighted uniformly.
func Draw(rng *rand.Rand, nRow int, withReplacement bool, sampleSize int) *Bag {
	bagRows := make([]bool, nRow)
	var sampRows []int32
	if withReplacement {
		sampRows = make([]int32, 0, nRow)
		for i := 0; i < nRow; i++ {
			row := int32(rng.Intn(nRow))
			if !bagRows[row] {
				bagRows[row] = true
				sampRows = append(sampRows, row)
			}
		}
		return &Bag{bagRows: bagRows, sampRows: sampRows}
	}
	if sampleSize <= 0 || sampleSize > nRow {
		sampleSize = nRow
	}
	perm := rng.Perm(nRow)
	sampRows = make([]int32, sampleSize)
	for i := 0; i < sampleSize; i++ {
		row := int32(perm[i])
		sampRows[i] = row
		bagRows[row] = true
	}
	return &Bag{bagRows: bagRows, sampRows: sampRows}
}

// BagRows reports, per row, whether it was drawn at least once.
func (b *Bag) BagRows() []bool { return b.bagRows }

// SampRows returns the sampled rows in draw order; its length is the tree's
// bagCount, and its index is the sampIdx used throughout sample2PT.
func (b *Bag) SampRows() []int32 { return b.sampRows }
