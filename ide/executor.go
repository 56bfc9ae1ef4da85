package ide

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// workExecutor runs a fixed pool of workers draining a bounded worklist of
// items of type T until quiescence: no item in flight and none queued.
//
// Quiescence is detected with a sync.WaitGroup: Submit calls Add before
// handing an item to a worker (or before a worker hands a follow-up item to
// itself), and the item is marked Done only after processing completes.
// Every Add happens while the counter is still above zero — either the
// initial seed submissions race to start it, or a worker's own in-flight
// item keeps it above zero while it enqueues successors — so no Add can
// ever race past a concluded Wait.
type workExecutor[T any] struct {
	process func(ctx context.Context, item T) error

	items   chan T
	wg      sync.WaitGroup
	pending atomic.Int64

	onDepthChange func(depth int)
}

func newWorkExecutor[T any](capacity int, process func(ctx context.Context, item T) error) *workExecutor[T] {
	return &workExecutor[T]{
		process: process,
		items:   make(chan T, capacity),
	}
}

// Submit enqueues item, blocking if the worklist is at capacity. Safe to
// call concurrently, including from within process.
func (w *workExecutor[T]) Submit(ctx context.Context, item T) error {
	w.wg.Add(1)
	n := w.pending.Add(1)
	if w.onDepthChange != nil {
		w.onDepthChange(int(n))
	}
	select {
	case w.items <- item:
		return nil
	case <-ctx.Done():
		w.wg.Done()
		w.pending.Add(-1)
		return ctx.Err()
	}
}

// Run starts numWorkers workers and blocks until the worklist drains to
// quiescence, the context is canceled, or a worker's process call returns
// an error (the first such error is returned; other workers are allowed to
// finish their current item before Run returns).
func (w *workExecutor[T]) Run(ctx context.Context, numWorkers int) error {
	if numWorkers < 1 {
		numWorkers = 1
	}

	g, gctx := errgroup.WithContext(ctx)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			for {
				select {
				case item, ok := <-w.items:
					if !ok {
						return nil
					}
					err := w.process(gctx, item)
					w.pending.Add(-1)
					w.wg.Done()
					if err != nil {
						return err
					}
				case <-done:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	err := g.Wait()
	close(w.items)
	return err
}

// Depth returns the current count of items submitted but not yet
// processed, for metrics reporting.
func (w *workExecutor[T]) Depth() int {
	return int(w.pending.Load())
}
