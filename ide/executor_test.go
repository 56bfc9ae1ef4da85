package ide

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkExecutorDrainsToQuiescence(t *testing.T) {
	var processed atomic.Int64
	var exec *workExecutor[int]
	exec = newWorkExecutor(16, func(ctx context.Context, item int) error {
		processed.Add(1)
		if item > 0 {
			// Fan out one follow-up item per input, exercising the
			// "worker submits while its own item is still in flight"
			// quiescence path.
			_ = exec.Submit(ctx, item-1)
		}
		return nil
	})

	ctx := context.Background()
	if err := exec.Submit(ctx, 5); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := exec.Run(ctx, 4); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := processed.Load(); got != 6 {
		t.Fatalf("processed = %d, want 6 (items 5..0)", got)
	}
	if d := exec.Depth(); d != 0 {
		t.Fatalf("Depth() after drain = %d, want 0", d)
	}
}

func TestWorkExecutorPropagatesProcessError(t *testing.T) {
	wantErr := errors.New("boom")
	exec := newWorkExecutor(4, func(context.Context, int) error { return wantErr })

	ctx := context.Background()
	if err := exec.Submit(ctx, 1); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	err := exec.Run(ctx, 2)
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run err = %v, want %v", err, wantErr)
	}
}

func TestWorkExecutorSubmitRespectsContextCancellation(t *testing.T) {
	// Capacity 1 and never running workers means the second Submit blocks
	// until ctx is canceled.
	exec := newWorkExecutor[int](1, func(context.Context, int) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := exec.Submit(ctx, 1); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- exec.Submit(ctx, 2) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Submit err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Submit did not return after context cancellation")
	}
}

func TestWorkExecutorOnDepthChangeReportsDepth(t *testing.T) {
	var depths []int
	exec := newWorkExecutor(8, func(context.Context, int) error { return nil })
	exec.onDepthChange = func(d int) { depths = append(depths, d) }

	ctx := context.Background()
	_ = exec.Submit(ctx, 1)
	_ = exec.Submit(ctx, 2)
	if len(depths) != 2 || depths[0] != 1 || depths[1] != 2 {
		t.Fatalf("depths = %v, want [1 2]", depths)
	}
	if err := exec.Run(ctx, 2); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
