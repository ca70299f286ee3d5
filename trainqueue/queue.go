// Package trainqueue distributes tree-growth blocks across worker
// processes. A Queue's unit of work is a Block (a batch of tree numbers
// a TrainDriver session has decided to grow together), not a single
// node: node-level expansion stays inside one worker's goroutine pool,
// while the queue only needs to hand out and collect whole blocks.
package trainqueue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Queue represents a queue where training blocks can be pushed and
// pulled. A worker pulls a block, grows every tree number in it, and
// then either completes it or drops it back for another worker to
// retry.
//
// Every method takes a context.Context as its first parameter so
// implementations can honor timeouts and cancellations.
type Queue interface {
	// Push stores a block in the queue, counting it as pending.
	Push(context.Context, *Block) error
	// Pull returns a pending block and a context tied to its run
	// budget, or three nil values if the queue is empty. The pulled
	// block counts as running until Complete or Drop is called for
	// it. On cancellation, callers should still Drop the block.
	Pull(context.Context) (*Block, context.Context, error)
	// Drop returns the block named by id to the pending set, unless
	// it has already been completed.
	Drop(context.Context, string) error
	// Complete removes the block named by id from the running set.
	Complete(context.Context, string) error
	// Count returns the number of pending and running blocks.
	Count(context.Context) (int, int, error)
	// Stop releases resources held by the queue and cancels any
	// contexts it handed out via Pull.
	Stop(context.Context) error
}

// WaitFor blocks until q reports no pending or running blocks, or ctx
// is done. A TrainDriver session calls this after pushing every block
// for a forest to know when the forest is fully grown.
func WaitFor(ctx context.Context, q Queue) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		pending, running, err := q.Count(ctx)
		if err != nil {
			return err
		}
		if pending+running == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

type memQueue struct {
	pending      []*Block
	head, tail   int
	pendingCount int
	running      map[string]*Block
	lock         sync.RWMutex
	ctx          context.Context
	cancel       context.CancelFunc
}

// New returns a Queue backed only by process memory, for single-process
// training where every worker is a goroutine of the same TrainDriver.
func New() Queue {
	ctx, cancel := context.WithCancel(context.Background())
	return &memQueue{
		running: make(map[string]*Block),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (mq *memQueue) Push(ctx context.Context, b *Block) error {
	mq.lock.Lock()
	defer mq.lock.Unlock()
	mq.push(b)
	return nil
}

func (mq *memQueue) Pull(ctx context.Context) (*Block, context.Context, error) {
	mq.lock.Lock()
	defer mq.lock.Unlock()
	if mq.pendingCount == 0 {
		return nil, nil, nil
	}
	mq.pendingCount--
	b := mq.pending[mq.head]
	mq.pending[mq.head] = nil
	mq.head = (mq.head + 1) % len(mq.pending)
	mq.running[b.ID()] = b
	return b, mq.ctx, nil
}

func (mq *memQueue) Drop(ctx context.Context, id string) error {
	mq.lock.Lock()
	defer mq.lock.Unlock()
	b, ok := mq.running[id]
	if !ok {
		return nil
	}
	delete(mq.running, id)
	mq.push(b)
	return nil
}

func (mq *memQueue) Complete(ctx context.Context, id string) error {
	mq.lock.Lock()
	defer mq.lock.Unlock()
	delete(mq.running, id)
	return nil
}

func (mq *memQueue) Count(ctx context.Context) (int, int, error) {
	mq.lock.RLock()
	defer mq.lock.RUnlock()
	return mq.pendingCount, len(mq.running), nil
}

func (mq *memQueue) Stop(ctx context.Context) error {
	mq.cancel()
	return nil
}

func (mq *memQueue) String() string {
	return fmt.Sprintf("{trainqueue pending:%d running:%d}", mq.pendingCount, len(mq.running))
}

func (mq *memQueue) push(b *Block) {
	if mq.pendingCount == len(mq.pending) {
		mq.reorder()
		mq.pending = append(mq.pending, b)
	} else {
		mq.pending[mq.tail] = b
		mq.tail = (mq.tail + 1) % len(mq.pending)
	}
	mq.pendingCount++
}

func (mq *memQueue) reorder() {
	if mq.head == 0 {
		return
	}
	mq.pending = append(mq.pending[mq.head:], mq.pending[:mq.head]...)
	mq.head = 0
	mq.tail = mq.pendingCount % max(len(mq.pending), 1)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
