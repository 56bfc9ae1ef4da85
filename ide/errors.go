package ide

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Solver and IncrementalUpdater operations.
// Callers should use errors.Is against these rather than comparing
// SolverError values directly, since SolverError wraps additional context.
var (
	// ErrClientPanic indicates a client-supplied FlowFunction, EdgeFunction
	// or ICFG method panicked during tabulation. The engine recovers the
	// panic, converts it to this error and aborts the run.
	ErrClientPanic = errors.New("ide: client function panicked")

	// ErrAborted names a run whose context was canceled before the
	// worklist drained. The solver does not return it: a canceled run
	// returns the context's own error (context.Canceled or
	// context.DeadlineExceeded), possibly wrapped in a SolverError.
	ErrAborted = errors.New("ide: solve aborted")

	// ErrNoPriorResult is returned by Solver.Update when no completed
	// SolveValue or Update result is retained to update.
	ErrNoPriorResult = errors.New("ide: no prior result to update incrementally")

	// ErrUnsoundEdgeFunction names an EdgeFunction.EqualTo implementation
	// returning true for functions that are in fact distinct, which shows
	// up as a wrong fixpoint. The engine does not check for this and never
	// returns this error.
	ErrUnsoundEdgeFunction = errors.New("ide: edge function equality appears unsound")
)

// SolverError wraps a sentinel error with the node at which it was
// observed.
type SolverError[N any] struct {
	Node N
	Err  error
}

func (e *SolverError[N]) Error() string {
	return fmt.Sprintf("ide: at node %v: %v", e.Node, e.Err)
}

func (e *SolverError[N]) Unwrap() error { return e.Err }

func newSolverError[N any](n N, err error) *SolverError[N] {
	return &SolverError[N]{Node: n, Err: err}
}
