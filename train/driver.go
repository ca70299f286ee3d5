// Package train implements TrainDriver: block-wise tree growth over a
// worker pool, followed by a serialized consume pass into a packed forest.
package train

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mjuarezm/Arborist/bagmap"
	"github.com/mjuarezm/Arborist/forest"
	"github.com/mjuarezm/Arborist/predictor"
	"github.com/mjuarezm/Arborist/pretree"
	"github.com/mjuarezm/Arborist/quantile"
	"github.com/mjuarezm/Arborist/respond"
	"github.com/mjuarezm/Arborist/sampling"
	"github.com/mjuarezm/Arborist/trainqueue"
)

// Response describes the training response a Driver grows trees against:
// either continuous (regression) or categorical (classification), indexed
// by global row.
type Response struct {
	Y        []float64 // regression response, len nRow; nil for classification
	Ctg      []int     // classification category codes, len nRow; nil for regression
	CtgWidth int       // classification category count; 0 for regression
}

func (r Response) isClassification() bool { return r.Ctg != nil }

// Config holds the hyperparameters a training run is launched with.
type Config struct {
	NTree           int
	TrainBlock      int
	MinNode         int
	WithReplacement bool
	SampleSize      int // only used when WithReplacement is false; 0 means nRow
	Workers         int
	QuantileSink    quantile.Sink
}

// Driver grows a forest of Config.NTree trees against pt/resp, dispatching
// tree growth across a bounded goroutine pool and serializing each
// trainBlock-sized batch into a forest.Builder.
type Driver struct {
	pt   *predictor.Table
	rr   *sampling.RowRank
	resp Response
	cfg  Config
	rng  *rand.Rand

	est     *pretree.Estimator
	builder *forest.Builder
}

// NewDriver builds a Driver. rng is the session's random source; callers
// that need reproducible runs must seed it themselves and not share it
// across concurrent Drivers.
func NewDriver(pt *predictor.Table, resp Response, cfg Config, rng *rand.Rand) (*Driver, error) {
	if cfg.NTree <= 0 {
		return nil, fmt.Errorf("train: NTree must be positive, got %d", cfg.NTree)
	}
	if cfg.TrainBlock <= 0 {
		cfg.TrainBlock = cfg.NTree
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MinNode < 1 {
		cfg.MinNode = 1
	}
	if resp.isClassification() && resp.CtgWidth <= 0 {
		return nil, fmt.Errorf("train: classification response requires a positive CtgWidth")
	}
	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = pt.NRow()
	}
	return &Driver{
		pt:      pt,
		rr:      sampling.Build(pt),
		resp:    resp,
		cfg:     cfg,
		rng:     rng,
		est:     pretree.NewEstimator(sampleSize, cfg.MinNode),
		builder: forest.NewBuilder(cfg.NTree, pt.NPred(), pt.NRow(), cfg.QuantileSink),
	}, nil
}

// Run grows every tree in trainBlock-sized blocks, consuming each block
// into the builder before starting the next, and returns the finished
// packed forest.
func (d *Driver) Run(ctx context.Context) (*forest.Forest, error) {
	for blockStart := 0; blockStart < d.cfg.NTree; blockStart += d.cfg.TrainBlock {
		blockEnd := blockStart + d.cfg.TrainBlock
		if blockEnd > d.cfg.NTree {
			blockEnd = d.cfg.NTree
		}
		treeNums := make([]int, blockEnd-blockStart)
		for i := range treeNums {
			treeNums[i] = blockStart + i
		}
		units, err := d.GrowBlock(ctx, treeNums)
		if err != nil {
			return nil, err
		}
		if err := d.builder.BlockConsume(units); err != nil {
			return nil, fmt.Errorf("train: consuming block [%d,%d): %w", blockStart, blockEnd, err)
		}
	}
	return d.builder.Finalize()
}

type growResult struct {
	unit forest.TreeUnit
	err  error
}

// growTree draws a bag, grows one pre-tree to completion via a node stack,
// and returns it ready for ForestBuilder.BlockConsume.
func (d *Driver) growTree(treeNum int) (forest.TreeUnit, error) {
	bag := sampling.Draw(d.rng, d.pt.NRow(), d.cfg.WithReplacement, d.cfg.SampleSize)
	sampRows := bag.SampRows()
	staged := sampling.NewStaged(d.pt, d.rr, sampRows)

	pt, err := pretree.New(d.est, d.pt.NRow(), d.pt.MaxFacCard(), bag.BagRows(), staged.RankValuer())
	if err != nil {
		return forest.TreeUnit{}, err
	}

	resp, scorer := d.localResponse(sampRows)

	infoSums := make([]float64, d.pt.NPred())
	stack := []int{0}
	for len(stack) > 0 {
		nodeID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		nv := sampling.BuildNodeView(staged, resp, pt.Sample2PT(), nodeID)
		if nv.NodeSize() < 2*d.cfg.MinNode {
			continue
		}
		tbl := sampling.ScoreNode(nv, d.cfg.MinNode)
		winner, ok := tbl.ArgMax(0, 0)
		if !ok {
			continue
		}
		_, ptLH, ptRH := winner.NonTerminal(nv, pt, nv, 0, 0, nv.NodeSize()-1, nodeID)
		infoSums[winner.PredIdx] += winner.Info
		stack = append(stack, ptLH, ptRH)
	}

	d.est.Refine(pt.Height())
	return forest.TreeUnit{Tree: pt, TreeNum: treeNum, Scorer: scorer, InfoSums: infoSums}, nil
}

// localResponse projects the global response onto a tree's sampIdx space.
func (d *Driver) localResponse(sampRows []int32) (sampling.ResponseValues, pretree.Scorer) {
	if d.resp.isClassification() {
		ctg := make([]int, len(sampRows))
		for sampIdx, row := range sampRows {
			ctg[sampIdx] = d.resp.Ctg[row]
		}
		c := respond.Classification{Ctg: ctg, CtgWidth: d.resp.CtgWidth}
		return c, c
	}
	y := make([]float64, len(sampRows))
	for sampIdx, row := range sampRows {
		y[sampIdx] = d.resp.Y[row]
	}
	r := respond.Regression{Y: y}
	return r, r
}

// BagMap exposes the forest-wide in-bag bitmap assembled during Run, for
// building an OOB walker.
func (d *Driver) BagMap() *bagmap.BagMap { return d.builder.BagMap() }

// RunQueued grows the forest through q: it pushes one trainqueue.Block per
// TrainBlock-sized batch of tree numbers, then pulls the blocks back one at
// a time, grows each with GrowBlock in this process, consumes it, and marks
// it complete. Grown trees are not exchanged through q; if another process
// takes a block off q, RunQueued runs dry and returns an error.
func (d *Driver) RunQueued(ctx context.Context, q trainqueue.Queue) (*forest.Forest, error) {
	nBlocks := 0
	for blockStart := 0; blockStart < d.cfg.NTree; blockStart += d.cfg.TrainBlock {
		blockEnd := blockStart + d.cfg.TrainBlock
		if blockEnd > d.cfg.NTree {
			blockEnd = d.cfg.NTree
		}
		treeNums := make([]int, blockEnd-blockStart)
		for i := range treeNums {
			treeNums[i] = blockStart + i
		}
		block := &trainqueue.Block{BlockID: fmt.Sprintf("block-%d", blockStart), TreeNums: treeNums}
		if err := q.Push(ctx, block); err != nil {
			return nil, fmt.Errorf("train: pushing %s: %w", block.ID(), err)
		}
		nBlocks++
	}

	for i := 0; i < nBlocks; i++ {
		block, bctx, err := q.Pull(ctx)
		if err != nil {
			return nil, fmt.Errorf("train: pulling block: %w", err)
		}
		if block == nil {
			return nil, fmt.Errorf("train: queue ran dry after %d of %d blocks", i, nBlocks)
		}
		units, err := d.GrowBlock(bctx, block.TreeNums)
		if err != nil {
			q.Drop(ctx, block.ID())
			return nil, fmt.Errorf("train: growing %s: %w", block.ID(), err)
		}
		if err := d.builder.BlockConsume(units); err != nil {
			q.Drop(ctx, block.ID())
			return nil, fmt.Errorf("train: consuming %s: %w", block.ID(), err)
		}
		if err := q.Complete(ctx, block.ID()); err != nil {
			return nil, fmt.Errorf("train: completing %s: %w", block.ID(), err)
		}
	}
	return d.builder.Finalize()
}

// GrowBlock grows every tree number in treeNums against the worker pool
// and returns the finished units, ready for forest.Builder.BlockConsume.
// Both Run and RunQueued call it; the units stay in this process.
func (d *Driver) GrowBlock(ctx context.Context, treeNums []int) ([]forest.TreeUnit, error) {
	jobs := make(chan int, len(treeNums))
	results := make(chan growResult, len(treeNums))

	workers := d.cfg.Workers
	if workers > len(treeNums) {
		workers = len(treeNums)
	}
	for w := 0; w < workers; w++ {
		go func() {
			for treeNum := range jobs {
				unit, err := d.growTree(treeNum)
				results <- growResult{unit: unit, err: err}
			}
		}()
	}
	for _, t := range treeNums {
		jobs <- t
	}
	close(jobs)

	units := make([]forest.TreeUnit, 0, len(treeNums))
	for i := 0; i < len(treeNums); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case r := <-results:
			if r.err != nil {
				return nil, r.err
			}
			units = append(units, r.unit)
		}
	}
	return units, nil
}
