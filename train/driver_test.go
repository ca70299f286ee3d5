package train

import (
	"context"
	"math/rand"
	"testing"

	"github.com/mjuarezm/Arborist/predictor"
	"github.com/mjuarezm/Arborist/walker"
)

func TestDriverGrowsRegressionTreeAndPredicts(t *testing.T) {
	// nRow=4, y=[1,2,3,4], x=[0.1,0.4,0.6,0.9], nTree=1, minNode=1.
	trainPT, err := predictor.New(4, []float64{0.1, 0.4, 0.6, 0.9}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp := Response{Y: []float64{1, 2, 3, 4}}
	cfg := Config{NTree: 1, TrainBlock: 1, MinNode: 1, WithReplacement: false, SampleSize: 4, Workers: 1}
	driver, err := NewDriver(trainPT, resp, cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	f, err := driver.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.NTree != 1 {
		t.Fatalf("expected 1 tree, got %d", f.NTree)
	}
	if err := f.Validate(trainPT.NPred()); err != nil {
		t.Fatalf("expected valid forest, got %v", err)
	}

	predictPT, err := predictor.New(2, []float64{0.3, 0.7}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	w := walker.New(f, predictPT, nil)
	got0, seen0, err := w.PredictRegression(0, false)
	if err != nil {
		t.Fatal(err)
	}
	if seen0 != 1 || got0 != 1.5 {
		t.Errorf("row 0: got %v (seen %d), want 1.5", got0, seen0)
	}
	got1, seen1, err := w.PredictRegression(1, false)
	if err != nil {
		t.Fatal(err)
	}
	if seen1 != 1 || got1 != 3.5 {
		t.Errorf("row 1: got %v (seen %d), want 3.5", got1, seen1)
	}
}

func TestDriverGrowsClassificationForest(t *testing.T) {
	// One factor predictor, cardinality 3, grown rather than hand-packed,
	// classes [A,A,B,B,A,B] -> [0,0,1,1,0,1].
	facBase := []int{0, 0, 1, 1, 0, 1}
	trainPT, err := predictor.New(6, nil, facBase, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	resp := Response{Ctg: []int{0, 0, 1, 1, 0, 1}, CtgWidth: 2}
	cfg := Config{NTree: 3, TrainBlock: 3, MinNode: 1, WithReplacement: true, Workers: 2}
	driver, err := NewDriver(trainPT, resp, cfg, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	f, err := driver.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Validate(trainPT.NPred()); err != nil {
		t.Fatalf("expected valid forest, got %v", err)
	}

	w := walker.New(f, trainPT, driver.BagMap())
	for row := 0; row < 6; row++ {
		_, _, _, err := w.PredictClassification(row, false, 2)
		if err != nil {
			t.Fatalf("row %d: %v", row, err)
		}
	}
}
