// Package quantile implements the optional quantile post-processing hook:
// a Sink receives (leaf rank, sample count) pairs, and an Estimator answers
// a weighted quantile over every rank it has received. Queries are not per
// row and do not look up response values.
package quantile

import "sort"

// Sink receives one (rank, sampleCount) observation per OOB leaf as a
// forest is built. It has no response to give back; a ForestBuilder feeds
// it purely for side effect.
type Sink interface {
	Observe(rank, sampleCount int)
}

// Estimator keeps every observed (rank, sampleCount) pair in one list, not
// bucketed per tree, and answers quantile queries over the ranks. It
// implements Sink so it can be wired directly into a forest.Builder.
type Estimator struct {
	ranks   []int
	weights []int
}

// NewEstimator returns an Estimator with no observations yet.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Observe records one leaf's rank and the number of samples that landed in
// it.
func (e *Estimator) Observe(rank, sampleCount int) {
	e.ranks = append(e.ranks, rank)
	e.weights = append(e.weights, sampleCount)
}

// Quantile answers the weighted p-quantile (0 <= p <= 1) over every
// observed leaf rank, weighting each rank by its sample count. It returns
// 0 if no observations have been recorded.
func (e *Estimator) Quantile(p float64) float64 {
	if len(e.ranks) == 0 {
		return 0
	}
	order := make([]int, len(e.ranks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return e.ranks[order[a]] < e.ranks[order[b]] })

	total := 0
	for _, w := range e.weights {
		total += w
	}
	target := p * float64(total)

	cum := 0
	for _, idx := range order {
		cum += e.weights[idx]
		if float64(cum) >= target {
			return float64(e.ranks[idx])
		}
	}
	return float64(e.ranks[order[len(order)-1]])
}
