package ide

import (
	"context"
	"sync"
	"time"

	"github.com/flowkit/idesolver/ide/emit"
)

// engineMode selects between SRH'96 monotone tabulation (modeCompute) and
// the incremental replay discipline (modeUpdate), which additionally
// clears prior jump-function contributions at first touch so a replay
// recomputes the fixpoint on affected sub-graphs instead of only ever
// joining upward from stale state (spec §4.11).
type engineMode int

const (
	modeCompute engineMode = iota
	modeUpdate
)

// tabulationEngine runs the SRH'96 tabulation algorithm with the CC'10
// concurrent worklist extensions: path edges are processed by a pool of
// workers draining a shared worklist, with a single summaryStore
// serializing call/exit bookkeeping across procedures.
type tabulationEngine[N comparable, D comparable, M comparable, V any] struct {
	problem TabulationProblem[N, D, M, V]
	icfg    ICFG[N, D, M]

	jumpFn    *jumpFunctionTable[N, D, V]
	summaries *summaryStore[N, D]
	seen      *pathEdgeSet[N, D]

	exec *workExecutor[PathEdge[N, D]]

	runID    string
	emitter  emit.Emitter
	metrics  *PrometheusMetrics
	worklist int

	mode engineMode

	jumpSaveMu sync.Mutex
	jumpSave   map[N]map[D]struct{}

	changedMu    sync.Mutex
	changedNodes map[N]struct{}

	// suppressAt, when non-nil, reports whether propagation reaching n
	// should be suppressed because a path-dominant predecessor within
	// the current incremental replay batch will independently
	// repropagate it (spec §4.5's third bullet, §4.9).
	suppressAt func(n N) bool
}

func newTabulationEngine[N comparable, D comparable, M comparable, V any](
	problem TabulationProblem[N, D, M, V], runID string, cfg config,
) *tabulationEngine[N, D, M, V] {
	e := &tabulationEngine[N, D, M, V]{
		problem:   problem,
		icfg:      problem.InterproceduralCFG(),
		jumpFn:    newJumpFunctionTable[N, D, V](),
		summaries: newSummaryStore[N, D](),
		seen:      newPathEdgeSet[N, D](),
		runID:     runID,
		emitter:   cfg.emitter,
		metrics:   cfg.metrics,
		worklist:  cfg.worklistCap,
	}
	e.exec = newWorkExecutor(cfg.worklistCap, e.dispatch)
	e.exec.onDepthChange = func(depth int) {
		e.metrics.SetWorklistDepth(e.runID, depth)
	}
	return e
}

// Solve seeds the worklist from problem.InitialSeeds and drains it to a
// fixpoint using numThreads workers.
func (e *tabulationEngine[N, D, M, V]) Solve(ctx context.Context, numThreads int) error {
	for n, facts := range e.problem.InitialSeeds() {
		for _, d := range facts {
			if err := e.propagate(ctx, d, n, d, e.problem.IdentityFunction()); err != nil {
				return err
			}
		}
	}
	if err := e.exec.Run(ctx, numThreads); err != nil {
		return &SolverError[N]{Err: err}
	}
	return nil
}

// propagate is the SRH'96 PROPAGATE procedure: join f into the jump
// function stored for (d1,n,d2) and, if the join actually changed the
// stored jump function, submit the edge to the worklist. seen is
// recorded unconditionally (it is a reporting index, not the scheduling
// gate: the same (d1,n,d2) triple can legitimately need reprocessing more
// than once if a later join widens its edge function).
func (e *tabulationEngine[N, D, M, V]) propagate(ctx context.Context, d1 D, n N, d2 D, f EdgeFunction[V]) error {
	changed := e.jumpFn.JoinAt(d1, n, d2, f)
	e.seen.Add(d1, n, d2)
	if !changed {
		return nil
	}
	if e.metrics != nil {
		e.metrics.IncPathEdges(e.runID)
	}
	e.emitter.Emit(emit.Event{
		RunID: e.runID,
		Msg:   "propagate",
	})
	return e.exec.Submit(ctx, PathEdge[N, D]{D1: d1, N: n, D2: d2})
}

// propagateOrClear dispatches to propagate in Compute mode and to
// clearAndPropagate in Update mode, matching the "propagate/
// clearAndPropagate" branches throughout spec §4.3-§4.5.
func (e *tabulationEngine[N, D, M, V]) propagateOrClear(ctx context.Context, d1 D, n N, d2 D, f EdgeFunction[V]) error {
	if e.mode == modeUpdate {
		return e.clearAndPropagate(ctx, d1, n, d2, f)
	}
	return e.propagate(ctx, d1, n, d2, f)
}

// markChanged records n as having been touched by the current
// incremental update, for phase 4's join-point recompute.
func (e *tabulationEngine[N, D, M, V]) markChanged(n N) {
	e.changedMu.Lock()
	defer e.changedMu.Unlock()
	if e.changedNodes == nil {
		e.changedNodes = make(map[N]struct{})
	}
	e.changedNodes[n] = struct{}{}
}

func (e *tabulationEngine[N, D, M, V]) isChanged(n N) bool {
	e.changedMu.Lock()
	defer e.changedMu.Unlock()
	_, ok := e.changedNodes[n]
	return ok
}

func (e *tabulationEngine[N, D, M, V]) changedNodesSnapshot() []N {
	e.changedMu.Lock()
	defer e.changedMu.Unlock()
	out := make([]N, 0, len(e.changedNodes))
	for n := range e.changedNodes {
		out = append(out, n)
	}
	return out
}

// resetJumpSave clears the per-update first-touch tracking map, called
// once per incremental replay batch (spec §4.8 phase 3).
func (e *tabulationEngine[N, D, M, V]) resetJumpSave() {
	e.jumpSaveMu.Lock()
	defer e.jumpSaveMu.Unlock()
	e.jumpSave = make(map[N]map[D]struct{})
}

// markChangedFirstTouch reports whether (d1,target) is being cleared for
// the first time during the current update, recording it if so.
func (e *tabulationEngine[N, D, M, V]) markChangedFirstTouch(d1 D, target N) bool {
	e.jumpSaveMu.Lock()
	defer e.jumpSaveMu.Unlock()
	if e.jumpSave == nil {
		e.jumpSave = make(map[N]map[D]struct{})
	}
	byD1, ok := e.jumpSave[target]
	if !ok {
		byD1 = make(map[D]struct{})
		e.jumpSave[target] = byD1
	}
	if _, ok := byD1[d1]; ok {
		return false
	}
	byD1[d1] = struct{}{}
	return true
}

// clearAndPropagate is propagate's Update-mode counterpart (spec §4.7):
// the first time (d1,target) is touched during the current update, it
// discards whatever jump functions were previously stored for that
// source fact at target before folding in the new contribution, so a
// replay recomputes the fixpoint there instead of only ever joining
// upward from stale state.
func (e *tabulationEngine[N, D, M, V]) clearAndPropagate(ctx context.Context, d1 D, target N, d2 D, f EdgeFunction[V]) error {
	if e.markChangedFirstTouch(d1, target) {
		e.jumpFn.ForgetSource(target, d1)
		e.markChanged(target)
	}
	return e.propagate(ctx, d1, target, d2, f)
}

// clearAndPropagateErase is clearAndPropagate's fact-erase form: target
// has no successor fact this pass, so instead of propagating a value
// forward it schedules an erased-fact path edge to propagate the
// deletion transitively. D2 carries d1 as a placeholder; Erased is the
// only field dispatch consults for this edge.
func (e *tabulationEngine[N, D, M, V]) clearAndPropagateErase(ctx context.Context, d1 D, target N) error {
	if e.markChangedFirstTouch(d1, target) {
		e.jumpFn.ForgetSource(target, d1)
		e.markChanged(target)
	}
	return e.exec.Submit(ctx, PathEdge[N, D]{D1: d1, N: target, D2: d1, Erased: true})
}

// dispatch processes one worklist item according to the kind of node it
// targets, recovering from client panics into ErrClientPanic.
func (e *tabulationEngine[N, D, M, V]) dispatch(ctx context.Context, edge PathEdge[N, D]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newSolverError(edge.N, ErrClientPanic)
		}
	}()

	start := time.Now()
	var kind string
	switch {
	case e.icfg.IsCallStmt(edge.N):
		kind = "call"
		err = e.processCall(ctx, edge)
	case e.icfg.IsExitStmt(edge.N):
		kind = "exit"
		err = e.processExit(ctx, edge)
	default:
		kind = "normal"
		err = e.processNormal(ctx, edge)
	}
	if e.metrics != nil {
		e.metrics.RecordPropagateLatency(e.runID, kind, time.Since(start))
	}
	return err
}

func (e *tabulationEngine[N, D, M, V]) currentFunction(d1 D, n N, d2 D) EdgeFunction[V] {
	if f, ok := e.jumpFn.Get(d1, n, d2); ok {
		return f
	}
	return e.problem.AllTopFunction()
}

// wrapFlow implements autoAddZero(): when enabled, the zero fact is
// guaranteed to survive every flow step even if the client's flow
// function forgot to propagate it explicitly.
func wrapFlow[D comparable](zero D, auto bool, ff FlowFunction[D]) FlowFunction[D] {
	if !auto {
		return ff
	}
	return FlowFunctionFunc[D](func(d D) []D {
		res := ff.Compute(d)
		if d != zero {
			return res
		}
		for _, r := range res {
			if r == zero {
				return res
			}
		}
		return append(res, zero)
	})
}

func (e *tabulationEngine[N, D, M, V]) processNormal(ctx context.Context, edge PathEdge[N, D]) error {
	ff := e.problem.FlowFunctions()
	ef := e.problem.EdgeFunctions()
	auto := e.problem.AutoAddZero()
	zero := e.problem.ZeroValue()
	f := e.currentFunction(edge.D1, edge.N, edge.D2)

	for _, succ := range e.icfg.SuccsOf(edge.N) {
		if edge.Erased {
			if err := e.clearAndPropagateErase(ctx, edge.D1, succ); err != nil {
				return err
			}
			continue
		}

		res := wrapFlow(zero, auto, ff.Normal(edge.N, succ)).Compute(edge.D2)
		for _, d3 := range res {
			g := ef.Normal(edge.N, edge.D2, succ, d3)
			if err := e.propagateOrClear(ctx, edge.D1, succ, d3, canonicalize(f.ComposeWith(g))); err != nil {
				return err
			}
		}
		if len(res) == 0 && e.mode == modeUpdate {
			if err := e.clearAndPropagateErase(ctx, edge.D1, succ); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *tabulationEngine[N, D, M, V]) processCall(ctx context.Context, edge PathEdge[N, D]) error {
	ff := e.problem.FlowFunctions()
	ef := e.problem.EdgeFunctions()
	auto := e.problem.AutoAddZero()
	zero := e.problem.ZeroValue()
	f := e.currentFunction(edge.D1, edge.N, edge.D2)

	retSites := e.icfg.ReturnSitesOfCallAt(edge.N)

	// A. Fact-erase path.
	if edge.Erased {
		for _, retSite := range retSites {
			if err := e.clearAndPropagateErase(ctx, edge.D1, retSite); err != nil {
				return err
			}
		}
		return nil
	}

	// B. Callee propagation.
	for _, callee := range e.icfg.CalleesOfCallAt(edge.N) {
		res := wrapFlow(zero, auto, ff.Call(edge.N, callee)).Compute(edge.D2)
		for _, sp := range e.icfg.StartPointsOf(callee) {
			for _, d3 := range res {
				if err := e.propagate(ctx, d3, sp, d3, e.problem.IdentityFunction()); err != nil {
					return err
				}
				existing, _ := e.summaries.AddIncoming(edge.N, edge.D2, sp, d3)
				for _, sum := range existing {
					if err := e.applySummary(ctx, edge.N, callee, sp, d3, sum.eP, sum.d2, false); err != nil {
						return err
					}
				}
			}
		}
	}

	// C. Call-to-return intraprocedural.
	for _, retSite := range retSites {
		targets := wrapFlow(zero, auto, ff.CallToReturn(edge.N, retSite)).Compute(edge.D2)
		for _, d3 := range targets {
			g := ef.CallToReturn(edge.N, edge.D2, retSite, d3)
			if err := e.propagateOrClear(ctx, edge.D1, retSite, d3, canonicalize(f.ComposeWith(g))); err != nil {
				return err
			}
		}
		if len(targets) == 0 && e.mode == modeUpdate {
			if err := e.clearAndPropagateErase(ctx, edge.D1, retSite); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *tabulationEngine[N, D, M, V]) processExit(ctx context.Context, edge PathEdge[N, D]) error {
	method := e.icfg.MethodOf(edge.N)
	var anyIncoming bool

	for _, sp := range e.icfg.StartPointsOf(method) {
		var waiting []incomingEntry[N, D]
		if edge.Erased {
			waiting = e.summaries.IncomingAt(sp, edge.D1)
		} else {
			var changed bool
			waiting, changed = e.summaries.AddEndSummary(sp, edge.D1, edge.N, edge.D2)
			if e.metrics != nil {
				e.metrics.IncSummaryReuse(e.runID)
			}
			if !changed {
				continue
			}
		}
		if len(waiting) > 0 {
			anyIncoming = true
		}
		for _, w := range waiting {
			if err := e.applySummary(ctx, w.callSite, method, sp, edge.D1, edge.N, edge.D2, edge.Erased); err != nil {
				return err
			}
		}
	}

	if !anyIncoming && e.problem.FollowReturnsPastSeeds() {
		if err := e.handleUnbalancedReturn(ctx, edge, method); err != nil {
			return err
		}
	}
	return nil
}

// handleUnbalancedReturn implements processExit's unbalanced-return
// branch (S6/B2): when an exit is reached with no registered callers
// waiting on its summary, every actual caller of method is treated as if
// it had an implicit incoming entry, with the call-side edge function
// replaced by f alone (there is no real call-site fact to compose
// against). If method has no callers at all, the body's own normal flow
// function is invoked on (n,n) purely for whatever side effects the
// client attaches to it.
func (e *tabulationEngine[N, D, M, V]) handleUnbalancedReturn(ctx context.Context, edge PathEdge[N, D], method M) error {
	ff := e.problem.FlowFunctions()
	ef := e.problem.EdgeFunctions()
	auto := e.problem.AutoAddZero()
	zero := e.problem.ZeroValue()
	f := e.currentFunction(edge.D1, edge.N, edge.D2)

	callers := e.icfg.CallersOf(method)
	if len(callers) == 0 {
		wrapFlow(zero, auto, ff.Normal(edge.N, edge.N)).Compute(edge.D2)
		return nil
	}

	for _, c := range callers {
		for _, retSite := range e.icfg.ReturnSitesOfCallAt(c) {
			if e.suppressAt != nil && e.suppressAt(retSite) {
				continue
			}
			if edge.Erased {
				if err := e.clearAndPropagateErase(ctx, edge.D1, retSite); err != nil {
					return err
				}
				continue
			}

			targets := wrapFlow(zero, auto, ff.Return(c, method, edge.N, retSite)).Compute(edge.D2)
			for _, d5 := range targets {
				fReturn := ef.Return(c, method, edge.N, edge.D2, retSite, d5)
				composed := canonicalize(f.ComposeWith(fReturn))
				if err := e.propagateOrClear(ctx, edge.D1, retSite, d5, composed); err != nil {
					return err
				}
			}
			if len(targets) == 0 && e.mode == modeUpdate {
				if err := e.clearAndPropagateErase(ctx, edge.D1, retSite); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// applySummary combines a completed (or erased) end summary
// (sp,d3)->(eP,d2) with every path edge that reached (callSite,
// callSiteFact) with d3 the callee-entry fact derived there, producing
// return-site path edges for each caller source d1. When erased is true,
// no flow/edge functions are invoked; a fact-erase is scheduled at each
// return site for every caller source instead.
func (e *tabulationEngine[N, D, M, V]) applySummary(
	ctx context.Context, callSite N, callee M, sp N, d3 D, eP N, d2 D, erased bool,
) error {
	ff := e.problem.FlowFunctions()
	ef := e.problem.EdgeFunctions()
	auto := e.problem.AutoAddZero()
	zero := e.problem.ZeroValue()
	callFlow := wrapFlow(zero, auto, ff.Call(callSite, callee))

	for _, retSite := range e.icfg.ReturnSitesOfCallAt(callSite) {
		if e.suppressAt != nil && e.suppressAt(retSite) {
			continue
		}

		if erased {
			for _, pair := range e.seen.AllAtNode(callSite) {
				callSiteFact := pair.D2
				if !containsFact(callFlow.Compute(callSiteFact), d3) {
					continue
				}
				for d1 := range e.jumpFn.AllSourcesTo(callSite, callSiteFact) {
					if err := e.clearAndPropagateErase(ctx, d1, retSite); err != nil {
						return err
					}
				}
			}
			continue
		}

		retFlow := wrapFlow(zero, auto, ff.Return(callSite, callee, eP, retSite))
		targets := retFlow.Compute(d2)

		for _, d5 := range targets {
			fReturn := ef.Return(callSite, callee, eP, d2, retSite, d5)

			// Only call-site facts whose Call flow function actually
			// yields this callee-entry fact d3 may have this summary
			// applied to them; other facts reaching callSite are
			// unrelated to this incoming/summary pairing.
			for _, pair := range e.seen.AllAtNode(callSite) {
				callSiteFact := pair.D2
				if !containsFact(callFlow.Compute(callSiteFact), d3) {
					continue
				}
				fCall := ef.Call(callSite, callSiteFact, callee, d3)
				for d1, fToCallSite := range e.jumpFn.AllSourcesTo(callSite, callSiteFact) {
					composed := canonicalize(fToCallSite.ComposeWith(fCall).ComposeWith(e.summaryFunction(sp, d3, eP, d2)).ComposeWith(fReturn))
					if err := e.propagateOrClear(ctx, d1, retSite, d5, composed); err != nil {
						return err
					}
				}
			}
		}

		if len(targets) == 0 && e.mode == modeUpdate {
			for _, pair := range e.seen.AllAtNode(callSite) {
				callSiteFact := pair.D2
				if !containsFact(callFlow.Compute(callSiteFact), d3) {
					continue
				}
				for d1 := range e.jumpFn.AllSourcesTo(callSite, callSiteFact) {
					if err := e.clearAndPropagateErase(ctx, d1, retSite); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (e *tabulationEngine[N, D, M, V]) summaryFunction(sp N, d3 D, eP N, d2 D) EdgeFunction[V] {
	if f, ok := e.jumpFn.Get(d3, eP, d2); ok {
		return f
	}
	return e.problem.IdentityFunction()
}

func containsFact[D comparable](facts []D, d D) bool {
	for _, f := range facts {
		if f == d {
			return true
		}
	}
	return false
}
