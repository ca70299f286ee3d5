package sampling

import (
	"sort"

	"github.com/mjuarezm/Arborist/splitsig"
)

// ScoreNode evaluates every predictor's best candidate split against nv and
// writes the admissible candidates into a fresh single-slot splitsig.Table
// (one node is scored at a time, so every candidate lives at levelIdx 0).
// Both numeric and factor candidates are scored by sum-of-squares variance
// reduction over nv's response values; for classification this treats
// category codes as the response, a simplification documented in
// DESIGN.md.
func ScoreNode(nv *NodeView, minNode int) *splitsig.Table {
	nPredNum := len(nv.numEntries)
	nPredFac := len(nv.facFlat)
	tbl := splitsig.LevelInit(nPredNum+nPredFac, 1)

	for p := 0; p < nPredNum; p++ {
		entries := nv.numEntries[p]
		n := len(entries)
		if n < 2*minNode {
			continue
		}
		gain, k, ok := bestNumericSplit(nv, entries, minNode)
		if ok {
			tbl.Write(0, p, -1, 0, uint32(k), gain)
		}
	}

	for f := 0; f < nPredFac; f++ {
		predIdx := nPredNum + f
		card := len(nv.facBounds[f])
		n := len(nv.facFlat[f])
		if n < 2*minNode || card < 2 {
			continue
		}
		gain, k, ok := bestFactorSplit(nv, f, minNode)
		if ok {
			setIdx := int32(predIdx)<<8 | int32(k)
			tbl.Write(0, predIdx, setIdx, uint32(card), 0, gain)
		}
	}
	return tbl
}

func bestNumericSplit(nv *NodeView, entries []int32, minNode int) (gain float64, lhCount int, ok bool) {
	n := len(entries)
	prefix := make([]float64, n+1)
	for i, s := range entries {
		prefix[i+1] = prefix[i] + nv.resp.ValueAt(int(s))
	}
	total := prefix[n]
	bestGain := 0.0
	bestK := -1
	for k := minNode; k <= n-minNode; k++ {
		lhSum := prefix[k]
		rhSum := total - lhSum
		g := lhSum*lhSum/float64(k) + rhSum*rhSum/float64(n-k) - total*total/float64(n)
		if g > bestGain {
			bestGain = g
			bestK = k
		}
	}
	if bestK < 0 {
		return 0, 0, false
	}
	return bestGain, bestK, true
}

func bestFactorSplit(nv *NodeView, facIdx, minNode int) (gain float64, lhRunCount int, ok bool) {
	card := len(nv.facBounds[facIdx])
	sums := make([]float64, card)
	counts := make([]int, card)
	for c := 0; c < card; c++ {
		bounds := nv.facBounds[facIdx][c]
		for i := bounds[0]; i <= bounds[1]; i++ {
			s := nv.facFlat[facIdx][i]
			sums[c] += nv.resp.ValueAt(int(s))
			counts[c]++
		}
	}

	order := make([]int, 0, card)
	for c := 0; c < card; c++ {
		if counts[c] > 0 {
			order = append(order, c)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		mi := sums[order[i]] / float64(counts[order[i]])
		mj := sums[order[j]] / float64(counts[order[j]])
		return mi < mj
	})

	n, total := 0, 0.0
	for _, c := range order {
		n += counts[c]
		total += sums[c]
	}

	bestGain := 0.0
	bestK := -1
	lhSum, lhN := 0.0, 0
	for idx := 0; idx < len(order)-1; idx++ {
		c := order[idx]
		lhSum += sums[c]
		lhN += counts[c]
		rhSum := total - lhSum
		rhN := n - lhN
		if lhN < minNode || rhN < minNode {
			continue
		}
		g := lhSum*lhSum/float64(lhN) + rhSum*rhSum/float64(rhN) - total*total/float64(n)
		if g > bestGain {
			bestGain = g
			bestK = idx + 1
		}
	}
	if bestK < 0 {
		return 0, 0, false
	}
	nv.meanOrder[facIdx] = order
	return bestGain, bestK, true
}
