package ide

import (
	"reflect"
	"sync"
)

// valueTable holds the second-phase IDE values: for every tabulated
// (n,d) pair, the lattice value representing the join over all realizable
// paths reaching it.
type valueTable[N comparable, D comparable, V any] struct {
	mu     sync.RWMutex
	values map[N]map[D]V
}

func newValueTable[N comparable, D comparable, V any]() *valueTable[N, D, V] {
	return &valueTable[N, D, V]{values: make(map[N]map[D]V)}
}

func (t *valueTable[N, D, V]) Get(n N, d D) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	byD, ok := t.values[n]
	if !ok {
		var zero V
		return zero, false
	}
	v, ok := byD[d]
	return v, ok
}

func (t *valueTable[N, D, V]) Set(n N, d D, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	byD, ok := t.values[n]
	if !ok {
		byD = make(map[D]V)
		t.values[n] = byD
	}
	byD[d] = v
}

func (t *valueTable[N, D, V]) ValuesAt(n N) map[D]V {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[D]V, len(t.values[n]))
	for d, v := range t.values[n] {
		out[d] = v
	}
	return out
}

// valueTask is a pending (node, fact) pair awaiting reprocessing in
// Phase V1.
type valueTask[N comparable, D comparable] struct {
	n N
	d D
}

// computeValues runs the two-phase IDE value computation (spec §4.10)
// once path edges have saturated.
//
// Phase V1 seeds every initial seed with its problem-defined seed value
// (⊥ for the zero fact, ⊤ otherwise) and propagates it through call
// edges: from a start point it follows every call reachable within the
// enclosing method via the stored jump functions, and from a call it
// follows every callee's start points via the call edge function,
// joining and rescheduling wherever a contribution changes a previously
// computed value. Phase V2 then folds every tabulated jump function
// against the value established at its source fact's start point.
//
// This runs as a single sequential worklist rather than the spec's
// thread-partitioned workers (see SPEC_FULL.md Q2): the phase's total
// work is bounded by the number of distinct (node,fact) pairs with a
// stored jump function, far smaller than the tabulation pass itself, so
// the extra concurrency is not worth the complexity here.
func (e *tabulationEngine[N, D, M, V]) computeValues() *valueTable[N, D, V] {
	lattice := e.problem.JoinLattice()
	vt := newValueTable[N, D, V]()
	zero := e.problem.ZeroValue()
	ff := e.problem.FlowFunctions()
	ef := e.problem.EdgeFunctions()

	var mu sync.Mutex
	var queue []valueTask[N, D]

	propagateValue := func(n N, d D, v V) {
		mu.Lock()
		defer mu.Unlock()
		current, ok := vt.Get(n, d)
		joined := v
		if ok {
			joined = lattice.Join(current, v)
		}
		if ok && reflect.DeepEqual(current, joined) {
			return
		}
		vt.Set(n, d, joined)
		queue = append(queue, valueTask[N, D]{n: n, d: d})
	}

	for n, facts := range e.problem.InitialSeeds() {
		for _, d := range facts {
			seedVal := lattice.Top()
			if d == zero {
				seedVal = lattice.Bottom()
			}
			propagateValue(n, d, seedVal)
		}
	}

	for len(queue) > 0 {
		task := queue[0]
		queue = queue[1:]
		n, d := task.n, task.d
		val, _ := vt.Get(n, d)

		switch {
		case e.icfg.IsStartPoint(n):
			method := e.icfg.MethodOf(n)
			for _, c := range e.icfg.CallsFromWithin(method) {
				for d2, f := range e.jumpFn.Forward(c, d) {
					propagateValue(c, d2, f.ComputeTarget(val))
				}
			}
		case e.icfg.IsCallStmt(n):
			for _, callee := range e.icfg.CalleesOfCallAt(n) {
				for _, d3 := range ff.Call(n, callee).Compute(d) {
					contribution := ef.Call(n, d, callee, d3).ComputeTarget(val)
					for _, sp := range e.icfg.StartPointsOf(callee) {
						propagateValue(sp, d3, contribution)
					}
				}
			}
		}
	}

	// Phase V2: fold every tabulated jump function into its target's
	// value, reading the source fact's value at its own method's start
	// point rather than guessing it from the fact's identity alone.
	for _, n := range e.icfg.AllNonCallStartNodes() {
		if e.icfg.IsCallStmt(n) || e.icfg.IsStartPoint(n) {
			continue
		}
		method := e.icfg.MethodOf(n)
		for pair, f := range e.jumpFn.ReverseLookupByTarget(n) {
			for _, sp := range e.icfg.StartPointsOf(method) {
				seedVal, ok := vt.Get(sp, pair.D1)
				if !ok {
					seedVal = lattice.Top()
				}
				contribution := f.ComputeTarget(seedVal)

				current, ok := vt.Get(n, pair.D2)
				if !ok {
					vt.Set(n, pair.D2, contribution)
					continue
				}
				vt.Set(n, pair.D2, lattice.Join(current, contribution))
			}
		}
	}
	return vt
}
