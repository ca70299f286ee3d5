package splitsig

import "testing"

func TestArgMaxReturnsNoneWhenAllBelowFloor(t *testing.T) {
	tbl := LevelInit(3, 1)
	tbl.Write(0, 0, -1, 5, 2, 0.1)
	tbl.Write(0, 1, -1, 5, 2, 0.2)
	tbl.Write(0, 2, -1, 5, 2, 0.05)
	_, ok := tbl.ArgMax(0, 0.2)
	if ok {
		t.Fatalf("expected no candidate to beat the floor strictly")
	}
}

func TestArgMaxReturnsStrictWinner(t *testing.T) {
	tbl := LevelInit(3, 1)
	tbl.Write(0, 0, -1, 5, 2, 0.1)
	tbl.Write(0, 1, -1, 5, 2, 0.9)
	tbl.Write(0, 2, -1, 5, 2, 0.4)
	best, ok := tbl.ArgMax(0, 0.0)
	if !ok {
		t.Fatalf("expected a winner")
	}
	if best.PredIdx != 1 || best.Info != 0.9 {
		t.Fatalf("expected predictor 1 with info 0.9, got predIdx=%d info=%v", best.PredIdx, best.Info)
	}
}

func TestArgMaxFirstWinsOnTies(t *testing.T) {
	tbl := LevelInit(3, 1)
	tbl.Write(0, 0, -1, 5, 2, 0.7)
	tbl.Write(0, 1, -1, 5, 2, 0.7)
	best, ok := tbl.ArgMax(0, 0.0)
	if !ok || best.PredIdx != 0 {
		t.Fatalf("expected first predictor (0) to win tie, got predIdx=%d ok=%v", best.PredIdx, ok)
	}
}

func TestArgMaxMultiLevelIsolation(t *testing.T) {
	tbl := LevelInit(2, 4)
	tbl.Write(0, 0, -1, 5, 2, 0.3)
	tbl.Write(2, 1, -1, 5, 2, 0.9)
	best0, ok0 := tbl.ArgMax(0, 0.0)
	if !ok0 || best0.PredIdx != 0 {
		t.Fatalf("level 0 should see only its own write, got %+v ok=%v", best0, ok0)
	}
	_, ok1 := tbl.ArgMax(1, 0.0)
	if ok1 {
		t.Fatalf("level 1 has no candidates and should report none")
	}
	best2, ok2 := tbl.ArgMax(2, 0.0)
	if !ok2 || best2.PredIdx != 1 {
		t.Fatalf("level 2 should see predictor 1's write, got %+v ok=%v", best2, ok2)
	}
}
