package walker

import (
	"math"
	"testing"

	"github.com/mjuarezm/Arborist/bagmap"
	"github.com/mjuarezm/Arborist/forest"
	"github.com/mjuarezm/Arborist/predictor"
)

func numericForest() *forest.Forest {
	// one tree, splits x at 0.5: left leaf 1.5, right leaf 3.5
	return &forest.Forest{
		Pred:       []int32{0, 0, 0},
		Num:        []float64{0.5, 1.5, 3.5},
		Bump:       []int32{1, 0, 0},
		TreeOrigin: []int32{0},
		FacOff:     []int32{0},
		NTree:      1,
	}
}

func TestWalkerRegressionNumericOnly(t *testing.T) {
	// S1: rows with x = [0.3, 0.7] -> [1.5, 3.5]
	pt, err := predictor.New(2, []float64{0.3, 0.7}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := New(numericForest(), pt, nil)
	for row, want := range []float64{0: 1.5, 1: 3.5} {
		got, seen, err := w.PredictRegression(row, false)
		if err != nil {
			t.Fatal(err)
		}
		if seen != 1 || got != want {
			t.Errorf("row %d: got %v (seen %d), want %v", row, got, seen, want)
		}
	}
}

func factorForest() *forest.Forest {
	// one tree, cardinality-3 factor split, LH = {category 0 ("A")}
	return &forest.Forest{
		Pred:       []int32{0, 0, 0},
		Num:        []float64{0, 0, 1},
		Bump:       []int32{1, 0, 0},
		TreeOrigin: []int32{0},
		FacOff:     []int32{0},
		FacBits:    []int32{1, 0, 0}, // only category 0 is LH
		NTree:      1,
	}
}

func TestWalkerClassificationFactorOnly(t *testing.T) {
	// S2: classes [A,A,B,B,A,B] -> categories [0,0,1,1,0,1]; walk [A,B,A] -> leaves [0,1,0]
	facBase := []int{0, 1, 0}
	pt, err := predictor.New(3, nil, facBase, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	w := New(factorForest(), pt, nil)
	wantCtg := []int{0, 1, 0}
	for row, want := range wantCtg {
		_, vote, seen, err := w.PredictClassification(row, false, 2)
		if err != nil {
			t.Fatal(err)
		}
		if seen != 1 || vote != want {
			t.Errorf("row %d: got vote %d (seen %d), want %d", row, vote, seen, want)
		}
	}
}

func TestWalkerOOBAggregation(t *testing.T) {
	// S3: nRow=3, nTree=2; tree0 bags {0,1}, tree1 bags {1,2}.
	// row 0 seen only by tree 1, row 1 by no tree, row 2 by tree 0.
	f := &forest.Forest{
		Pred:       []int32{0, 0, 0, 0, 0, 0},
		Num:        []float64{0.5, 10, 20, 0.5, 30, 40},
		Bump:       []int32{1, 0, 0, 1, 0, 0},
		TreeOrigin: []int32{0, 3},
		FacOff:     []int32{0, 0},
		NTree:      2,
	}
	pt, err := predictor.New(3, []float64{0.1, 0.1, 0.1}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	bag := bagmap.New(2, 3)
	bag.Set(0, 0)
	bag.Set(0, 1)
	bag.Set(1, 1)
	bag.Set(1, 2)

	w := New(f, pt, bag)

	if _, seen, err := w.PredictRegression(0, true); err != nil || seen != 1 {
		t.Errorf("row 0: seen=%d err=%v, want seen=1", seen, err)
	}
	mean1, seen1, err := w.PredictRegression(1, true)
	if err != nil {
		t.Fatal(err)
	}
	if seen1 != 0 || !math.IsNaN(mean1) {
		t.Errorf("row 1: seen=%d mean=%v, want seen=0 and NaN", seen1, mean1)
	}
	if _, seen, err := w.PredictRegression(2, true); err != nil || seen != 1 {
		t.Errorf("row 2: seen=%d err=%v, want seen=1", seen, err)
	}
}

func TestWalkerCorruptForestDetection(t *testing.T) {
	// S6: bump[0] = 1000 > forestSize
	f := numericForest()
	f.Bump[0] = 1000
	pt, err := predictor.New(1, []float64{0.3}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := New(f, pt, nil)
	_, _, err = w.PredictRegression(0, false)
	if err == nil {
		t.Fatalf("expected corrupt-forest error")
	}
}

func TestWalkerMixedDescent(t *testing.T) {
	// S4-style: predictor 0 numeric, predictor 1 factor card 2. Root splits
	// numeric (both rows go left), then a factor split separates rows by
	// category into two distinct leaves.
	f := &forest.Forest{
		Pred:       []int32{0, 1, 0, 0, 0},
		Num:        []float64{0.5, 0, 9, 7, 11},
		Bump:       []int32{1, 2, 0, 0, 0},
		TreeOrigin: []int32{0},
		FacOff:     []int32{0},
		FacBits:    []int32{1, 0}, // category 0 goes left, category 1 goes right
		NTree:      1,
	}
	pt, err := predictor.New(2, []float64{0.1, 0.1}, []int{0, 1}, []int{2})
	if err != nil {
		t.Fatal(err)
	}
	w := New(f, pt, nil)

	got, seen, err := w.PredictRegression(0, false)
	if err != nil {
		t.Fatal(err)
	}
	if seen != 1 || got != 7 {
		t.Errorf("row 0: got %v (seen %d), want 7", got, seen)
	}
	got, seen, err = w.PredictRegression(1, false)
	if err != nil {
		t.Fatal(err)
	}
	if seen != 1 || got != 11 {
		t.Errorf("row 1: got %v (seen %d), want 11", got, seen)
	}
}

func TestConfusionMatrixClassError(t *testing.T) {
	cm := NewConfusionMatrix(2)
	cm.Observe(0, 0)
	cm.Observe(0, 1)
	cm.Observe(1, 1)
	cm.Observe(1, 1)
	if got := cm.ClassError(0); got != 0.5 {
		t.Errorf("class 0 error = %v, want 0.5", got)
	}
	if got := cm.ClassError(1); got != 0 {
		t.Errorf("class 1 error = %v, want 0", got)
	}
}

func TestRegressionMSE(t *testing.T) {
	mse := RegressionMSE([]float64{1, 2, 3}, []float64{1, 2, 5})
	want := (0.0 + 0.0 + 4.0) / 3.0
	if mse != want {
		t.Errorf("mse = %v, want %v", mse, want)
	}
}
