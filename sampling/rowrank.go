// Package sampling implements the external collaborators the core split
// search depends on but does not own: a one-time presort of every numeric
// predictor's column (RowRank), row bagging (Bag), and the per-node staged
// sample view (NodeView) that replays accepted splits back into a pre-tree.
package sampling

import (
	"sort"

	"github.com/mjuarezm/Arborist/predictor"
)

// RowRank presorts every numeric predictor's column once per session into
// ascending rank order. It is read-only for the remainder of training and
// is also the collaborator PreTree.RankValuer reads a split's midpoint
// threshold from.
type RowRank struct {
	pt     *predictor.Table
	rank   [][]int32 // per numeric predictor: row indices in ascending value order
	invNum [][]int32 // per numeric predictor: rank position of each row
}

// Build presorts every numeric predictor's column of pt.
func Build(pt *predictor.Table) *RowRank {
	nPredNum := pt.NPredNum()
	nRow := pt.NRow()
	rank := make([][]int32, nPredNum)
	invNum := make([][]int32, nPredNum)
	for p := 0; p < nPredNum; p++ {
		col := pt.NumColumn(p)
		order := make([]int32, nRow)
		for r := range order {
			order[r] = int32(r)
		}
		sort.SliceStable(order, func(i, j int) bool { return col[order[i]] < col[order[j]] })
		inv := make([]int32, nRow)
		for rk, row := range order {
			inv[row] = int32(rk)
		}
		rank[p] = order
		invNum[p] = inv
	}
	return &RowRank{pt: pt, rank: rank, invNum: invNum}
}

// Row returns the row at rank position rank for numeric predictor predIdx.
func (rr *RowRank) Row(predIdx, rank int) int32 { return rr.rank[predIdx][rank] }

// RankOf returns row's rank position for numeric predictor predIdx.
func (rr *RowRank) RankOf(predIdx int, row int32) int32 { return rr.invNum[predIdx][row] }

// ValueAt implements pretree.RankValuer: the observed value at rank for
// numeric predictor predIdx.
func (rr *RowRank) ValueAt(predIdx, rank int) float64 {
	row := rr.Row(predIdx, rank)
	return rr.pt.NumAt(predIdx, int(row))
}
