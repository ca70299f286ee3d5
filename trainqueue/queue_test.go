package trainqueue

import (
	"context"
	"testing"
)

func TestPushPullCompleteCount(t *testing.T) {
	q := New()
	ctx := context.Background()
	if err := q.Push(ctx, &Block{BlockID: "b1", TreeNums: []int{0, 1, 2}}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	pending, running, err := q.Count(ctx)
	if err != nil || pending != 1 || running != 0 {
		t.Fatalf("Count after push = (%d, %d, %v), want (1, 0, nil)", pending, running, err)
	}

	b, bctx, err := q.Pull(ctx)
	if err != nil || b == nil || bctx == nil {
		t.Fatalf("Pull = (%v, %v, %v)", b, bctx, err)
	}
	if b.ID() != "b1" {
		t.Fatalf("Pull returned block %q, want b1", b.ID())
	}
	pending, running, _ = q.Count(ctx)
	if pending != 0 || running != 1 {
		t.Fatalf("Count after pull = (%d, %d), want (0, 1)", pending, running)
	}

	if err := q.Complete(ctx, b.ID()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	pending, running, _ = q.Count(ctx)
	if pending != 0 || running != 0 {
		t.Fatalf("Count after complete = (%d, %d), want (0, 0)", pending, running)
	}
}

func TestPullOnEmptyQueueReturnsNilTriple(t *testing.T) {
	q := New()
	b, bctx, err := q.Pull(context.Background())
	if b != nil || bctx != nil || err != nil {
		t.Fatalf("Pull on empty queue = (%v, %v, %v), want (nil, nil, nil)", b, bctx, err)
	}
}

func TestDropReturnsBlockToPending(t *testing.T) {
	q := New()
	ctx := context.Background()
	q.Push(ctx, &Block{BlockID: "b1", TreeNums: []int{0}})
	b, _, _ := q.Pull(ctx)
	if err := q.Drop(ctx, b.ID()); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	pending, running, _ := q.Count(ctx)
	if pending != 1 || running != 0 {
		t.Fatalf("Count after drop = (%d, %d), want (1, 0)", pending, running)
	}
}

func TestWaitForReturnsOnceDrained(t *testing.T) {
	q := New()
	ctx := context.Background()
	q.Push(ctx, &Block{BlockID: "b1", TreeNums: []int{0}})
	b, _, _ := q.Pull(ctx)
	go func() {
		q.Complete(ctx, b.ID())
	}()
	if err := WaitFor(ctx, q); err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
}
