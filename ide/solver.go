package ide

import (
	"context"
	"fmt"
	"io"

	"github.com/flowkit/idesolver/ide/resultstore"
)

// Result is the outcome of a completed Solve: the tabulated path edges and,
// when the problem requested it, the computed IDE values.
type Result[N comparable, D comparable, V any] struct {
	seen   *pathEdgeSet[N, D]
	values *valueTable[N, D, V]
}

// FactsAt returns the distinct facts reachable at n.
func (r *Result[N, D, V]) FactsAt(n N) []D {
	seenD := make(map[D]struct{})
	var out []D
	for _, pair := range r.seen.AllAtNode(n) {
		if _, ok := seenD[pair.D2]; ok {
			continue
		}
		seenD[pair.D2] = struct{}{}
		out = append(out, pair.D2)
	}
	return out
}

// ValueAt returns the computed value for fact d at node n. Returns false
// if the problem did not request value computation, or (n,d) was never
// reached.
func (r *Result[N, D, V]) ValueAt(n N, d D) (V, bool) {
	if r.values == nil {
		var zero V
		return zero, false
	}
	return r.values.Get(n, d)
}

// ValuesAt returns every computed fact-to-value mapping at n.
func (r *Result[N, D, V]) ValuesAt(n N) map[D]V {
	if r.values == nil {
		return nil
	}
	return r.values.ValuesAt(n)
}

// Nodes returns every node with at least one tabulated fact.
func (r *Result[N, D, V]) Nodes() []N {
	return r.seen.nodesWithEdges()
}

// Records renders the result as resultstore.FactRecords using the given
// string formatters, ready to pass to a resultstore.Store.
func (r *Result[N, D, V]) Records(runID string, nodeFmt func(N) string, factFmt func(D) string, valueFmt func(V) string) []resultstore.FactRecord {
	var out []resultstore.FactRecord
	for _, n := range r.Nodes() {
		nodeStr := nodeFmt(n)
		for _, d := range r.FactsAt(n) {
			rec := resultstore.FactRecord{RunID: runID, Node: nodeStr, Fact: factFmt(d)}
			if v, ok := r.ValueAt(n, d); ok && valueFmt != nil {
				rec.Value = valueFmt(v)
			}
			out = append(out, rec)
		}
	}
	return out
}

// Solver runs a TabulationProblem to a fixpoint, optionally retaining state
// between runs so a later call can apply an incremental update instead of
// resolving from scratch.
type Solver[N comparable, D comparable, M comparable, V any] struct {
	problem TabulationProblem[N, D, M, V]
	cfg     config

	last *tabulationEngine[N, D, M, V]
}

// New constructs a Solver for problem with the given options applied over
// the defaults.
func New[N comparable, D comparable, M comparable, V any](
	problem TabulationProblem[N, D, M, V], opts ...Option,
) (*Solver[N, D, M, V], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("ide: applying option: %w", err)
		}
	}
	return &Solver[N, D, M, V]{problem: problem, cfg: cfg}, nil
}

// solveEngine builds a fresh engine for SolveValue, runs it to a
// fixpoint and retains it for a later Update; values are computed by the
// caller.
func (s *Solver[N, D, M, V]) solveEngine(ctx context.Context, runID string) (*tabulationEngine[N, D, M, V], error) {
	numThreads := s.problem.NumThreads()
	if numThreads < 1 {
		numThreads = s.cfg.numThreads
	}

	engine := newTabulationEngine[N, D, M, V](s.problem, runID, s.cfg)
	if err := engine.Solve(ctx, numThreads); err != nil {
		return nil, err
	}
	s.last = engine
	return engine, nil
}

// SolveValue runs tabulation to a fixpoint and returns the result,
// including computed values when the problem's ComputeValues is true.
func (s *Solver[N, D, M, V]) SolveValue(ctx context.Context, runID string) (*Result[N, D, V], error) {
	engine, err := s.solveEngine(ctx, runID)
	if err != nil {
		return nil, err
	}

	result := &Result[N, D, V]{seen: engine.seen}
	if s.problem.ComputeValues() {
		result.values = engine.computeValues()
	}
	return result, nil
}

// Update applies a changeset against the previously completed run and
// returns the updated result. Returns ErrNoPriorResult if no run has
// completed yet.
func (s *Solver[N, D, M, V]) Update(ctx context.Context, runID string, newICFG UpdatableICFG[N, D, M]) (*Result[N, D, V], error) {
	if s.last == nil {
		return nil, ErrNoPriorResult
	}

	updater := &incrementalUpdater[N, D, M, V]{
		solver: s,
		old:    s.last,
		runID:  runID,
	}
	engine, err := updater.Apply(ctx, newICFG)
	if err != nil {
		return nil, err
	}
	s.last = engine

	result := &Result[N, D, V]{seen: engine.seen}
	if s.problem.ComputeValues() {
		result.values = engine.computeValues()
	}
	return result, nil
}

// ClearResults discards the retained tabulation state from the last
// completed Solve, so a subsequent Update call (which requires a prior
// result) instead returns ErrNoPriorResult, and SolveValue starts fresh.
func (s *Solver[N, D, M, V]) ClearResults() {
	s.last = nil
}

// GetOptimizationMode returns the worklist scheduling mode currently
// configured on this Solver.
func (s *Solver[N, D, M, V]) GetOptimizationMode() OptimizationMode {
	return s.cfg.optMode
}

// SetOptimizationMode updates the worklist scheduling mode used by
// future Solve/Update calls.
func (s *Solver[N, D, M, V]) SetOptimizationMode(m OptimizationMode) {
	s.cfg.optMode = m
}

// PrintStats writes a short human-readable summary of the last completed
// run's tabulated state to w: node and path-edge counts. Reports that no
// run has completed yet if Solve/Update has never succeeded.
func (s *Solver[N, D, M, V]) PrintStats(w io.Writer) {
	if s.last == nil {
		fmt.Fprintln(w, "ide: no completed run")
		return
	}

	nodes := s.last.seen.nodesWithEdges()
	var edges int
	for _, n := range nodes {
		edges += len(s.last.seen.AllAtNode(n))
	}
	fmt.Fprintf(w, "ide: run %q: %d nodes, %d path edges\n", s.last.runID, len(nodes), edges)
}
