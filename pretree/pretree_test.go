package pretree

import "testing"

type constValuer struct{ vals []float64 }

func (c constValuer) ValueAt(predIdx, rank int) float64 { return c.vals[rank] }

type noopReplayer struct{}

func (noopReplayer) Replay(sample2PT []int, predIdx, bufferBit, start, end, newPtID int) float64 {
	for i := start; i <= end; i++ {
		sample2PT[i] = newPtID
	}
	return 0
}

type leafScorer struct{ score float64 }

func (s leafScorer) Scores(sample2PT []int, height int, outPred []int32, outNum []float64) {
	for i := range outNum {
		outNum[i] = s.score
	}
}

func allInBag(n int) []bool {
	b := make([]bool, n)
	for i := range b {
		b[i] = true
	}
	return b
}

func TestTerminalOffspringAndNonTerminalBookkeeping(t *testing.T) {
	est := NewEstimator(4, 1)
	pt, err := New(est, 4, 0, allInBag(4), constValuer{vals: []float64{0, 1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if pt.Height() != 1 || pt.LeafCount() != 1 {
		t.Fatalf("unexpected initial state: height=%d leafCount=%d", pt.Height(), pt.LeafCount())
	}
	lh, rh := pt.TerminalOffspring(0)
	if lh != 1 || rh != 2 {
		t.Fatalf("unexpected offspring ids: %d %d", lh, rh)
	}
	if pt.Height() != 3 || pt.LeafCount() != 3 {
		t.Fatalf("unexpected state after offspring: height=%d leafCount=%d", pt.Height(), pt.LeafCount())
	}
	pt.NonTerminal(0, 1.5, 0.5, 2)
	if pt.LeafCount() != 2 {
		t.Fatalf("NonTerminal should net +1 leaf after a paired TerminalOffspring, got leafCount=%d", pt.LeafCount())
	}
}

func TestNonTerminalNumWritesMidpoint(t *testing.T) {
	est := NewEstimator(4, 1)
	rv := constValuer{vals: []float64{0.4, 0.6}}
	pt, err := New(est, 4, 0, allInBag(4), rv)
	if err != nil {
		t.Fatal(err)
	}
	lh, rh := pt.NonTerminalNum(2.0, 0, 0, 1, 0)
	if lh != 1 || rh != 2 {
		t.Fatalf("unexpected offspring ids: %d %d", lh, rh)
	}
	outPred := make([]int32, pt.Height())
	outNum := make([]float64, pt.Height())
	outBump := make([]int32, pt.Height())
	pt.ConsumeNodes(leafScorer{score: 9}, outPred, outNum, outBump)
	if outNum[0] != 0.5 {
		t.Errorf("expected split midpoint 0.5, got %v", outNum[0])
	}
	if outBump[0] != 1 {
		t.Errorf("expected bump 1, got %v", outBump[0])
	}
	if outBump[1] != 0 || outBump[2] != 0 {
		t.Errorf("expected leaves to have bump 0, got %v %v", outBump[1], outBump[2])
	}
	if outNum[1] != 9 || outNum[2] != 9 {
		t.Errorf("expected leaf scores from scorer, got %v %v", outNum[1], outNum[2])
	}
}

func TestNonTerminalFacAndLHBit(t *testing.T) {
	est := NewEstimator(6, 1)
	pt, err := New(est, 6, 3, allInBag(6), constValuer{})
	if err != nil {
		t.Fatal(err)
	}
	lh, rh := pt.NonTerminalFac(1.0, 0, 3, 0)
	pt.LHBit(0, 0) // rank 0 ("A") goes left

	outBits := make([]int32, pt.TreeBitWidth())
	pt.ConsumeSplitBits(outBits)
	want := []int32{1, 0, 0}
	for i, w := range want {
		if outBits[i] != w {
			t.Errorf("outBits[%d] = %d, want %d", i, outBits[i], w)
		}
	}
	_ = lh
	_ = rh
}

func TestReplayDelegatesToCollaborator(t *testing.T) {
	est := NewEstimator(4, 1)
	pt, err := New(est, 4, 0, allInBag(4), constValuer{})
	if err != nil {
		t.Fatal(err)
	}
	sum := pt.Replay(noopReplayer{}, 0, 0, 0, 3, 7)
	if sum != 0 {
		t.Errorf("expected zero sum from stub replayer, got %v", sum)
	}
	for _, v := range pt.Sample2PT() {
		if v != 7 {
			t.Errorf("expected sample2PT relabeled to 7, got %v", v)
		}
	}
}

func TestGrowNodesDoublesOnOverflow(t *testing.T) {
	est := NewEstimator(4, 4) // small estimate to force growth quickly
	pt, err := New(est, 4, 0, allInBag(4), constValuer{vals: []float64{0, 1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	initial := len(pt.nodeVec)
	id := 0
	for pt.Height() < initial+10 {
		lh, _ := pt.TerminalOffspring(id)
		pt.NonTerminal(id, 1, 0.5, 0)
		id = lh
	}
	if len(pt.nodeVec) <= initial {
		t.Errorf("expected node vector to have grown beyond initial %d, got %d", initial, len(pt.nodeVec))
	}
}

func TestEstimatorRefineNeverShrinks(t *testing.T) {
	e := NewEstimator(8, 2)
	h0 := e.Height()
	e.Refine(h0 + 1)
	h1 := e.Height()
	if h1 <= h0 {
		t.Fatalf("expected refine to grow estimate, got %d -> %d", h0, h1)
	}
	e.Refine(1)
	if e.Height() != h1 {
		t.Errorf("Refine with a smaller height should not shrink the estimate: got %d, want %d", e.Height(), h1)
	}
}
