package bagmap

import "testing"

func TestSetTestRoundTrip(t *testing.T) {
	b := New(3, 5)
	b.Set(1, 2)
	b.Set(0, 4)
	for tree := 0; tree < 3; tree++ {
		for row := 0; row < 5; row++ {
			want := (tree == 1 && row == 2) || (tree == 0 && row == 4)
			if got := b.Test(tree, row); got != want {
				t.Errorf("Test(%d,%d) = %v, want %v", tree, row, got, want)
			}
		}
	}
}

func TestIngestTranposesRowToTreeAxis(t *testing.T) {
	// nRow=3, nTree=2: tree 0 bags rows {0,1}, tree 1 bags rows {1,2}.
	b := New(2, 3)

	rb0 := NewRowBits(3)
	rb0.Set(0)
	rb0.Set(1)
	b.Ingest(0, rb0)

	rb1 := NewRowBits(3)
	rb1.Set(1)
	rb1.Set(2)
	b.Ingest(1, rb1)

	cases := []struct {
		tree, row int
		want      bool
	}{
		{0, 0, true}, {0, 1, true}, {0, 2, false},
		{1, 0, false}, {1, 1, true}, {1, 2, true},
	}
	for _, c := range cases {
		if got := b.Test(c.tree, c.row); got != c.want {
			t.Errorf("Test(%d,%d) = %v, want %v", c.tree, c.row, got, c.want)
		}
	}
}

func TestIngestTreatsRowBitsAsRowFastestAxis(t *testing.T) {
	// Pre-tree row bits are row-indexed; the global map is tree-indexed.
	// A single-tree ingest exercises the axis swap directly.
	b := New(4, 40)
	rb := NewRowBits(40)
	for _, row := range []int{0, 31, 32, 39} {
		rb.Set(row)
	}
	b.Ingest(2, rb)
	for row := 0; row < 40; row++ {
		want := row == 0 || row == 31 || row == 32 || row == 39
		if got := b.Test(2, row); got != want {
			t.Errorf("row %d: got %v want %v", row, got, want)
		}
		for tree := 0; tree < 4; tree++ {
			if tree == 2 {
				continue
			}
			if b.Test(tree, row) {
				t.Errorf("tree %d row %d unexpectedly set", tree, row)
			}
		}
	}
}

func TestIngestTolerantOfFinalPartialWord(t *testing.T) {
	// nRow=35 leaves the final word of RowBits holding only 3 valid rows.
	b := New(1, 35)
	rb := NewRowBits(35)
	rb.Set(34)
	b.Ingest(0, rb)
	if !b.Test(0, 34) {
		t.Errorf("expected row 34 to be in-bag")
	}
}

func TestWordsExposesPackedWire(t *testing.T) {
	b := New(2, 2)
	b.Set(0, 0)
	b.Set(1, 1)
	words := b.Words()
	if len(words) == 0 {
		t.Fatalf("expected at least one word")
	}
}
