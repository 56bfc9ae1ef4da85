package ide

import (
	"context"
	"fmt"
)

// incrementalUpdater applies a Changeset against a previously solved run
// instead of resolving from scratch, following the five-phase protocol of
// spec §4.8:
//
//  0. Compute the changeset between the old and new ICFG; merge node
//     identity so prior wrapper references keep resolving.
//  1. Remove jump functions, path edges and procedure summaries at every
//     expired node.
//  2. Build the set of nodes needing reprocessing per method, containing
//     loop bodies at their header instead of re-entering mid-loop.
//  3. Replay each starting node in Update mode, using a backward-BFS
//     dominance check to skip nodes a sibling replay will reach anyway.
//  4. Recompute join points: nodes touched by the replay with two or more
//     incoming paths get their predecessors' facts rescheduled, since a
//     single-predecessor replay can under-propagate a join.
//  5. Recompute values from scratch (handled by the caller: Solver always
//     builds a fresh valueTable after Update returns).
type incrementalUpdater[N comparable, D comparable, M comparable, V any] struct {
	solver *Solver[N, D, M, V]
	old    *tabulationEngine[N, D, M, V]
	runID  string
}

func (u *incrementalUpdater[N, D, M, V]) Apply(ctx context.Context, newICFG UpdatableICFG[N, D, M]) (*tabulationEngine[N, D, M, V], error) {
	oldICFG, ok := u.old.icfg.(UpdatableICFG[N, D, M])
	if !ok {
		return nil, fmt.Errorf("ide: incremental update requires the problem's original ICFG to implement UpdatableICFG")
	}

	changeset := newICFG.ComputeChangeset(oldICFG)
	if u.solver.cfg.metrics != nil {
		u.solver.cfg.metrics.IncIncrementalRepropagation(u.runID)
	}
	if changeset.Empty() {
		return u.old, nil
	}

	newICFG.Merge(oldICFG)

	numThreads := u.solver.problem.NumThreads()
	if numThreads < 1 {
		numThreads = u.solver.cfg.numThreads
	}

	engine := &tabulationEngine[N, D, M, V]{
		problem:   u.solver.problem,
		icfg:      newICFG,
		jumpFn:    u.old.jumpFn,
		summaries: u.old.summaries,
		seen:      u.old.seen,
		runID:     u.runID,
		emitter:   u.solver.cfg.emitter,
		metrics:   u.solver.cfg.metrics,
		worklist:  u.solver.cfg.worklistCap,
	}

	u.removeExpired(engine, changeset)

	work := u.buildChangeSet(engine, newICFG, changeset)

	if err := u.replay(ctx, engine, work, numThreads); err != nil {
		return nil, err
	}

	if err := u.recomputeJoinPoints(ctx, engine, newICFG, numThreads); err != nil {
		return nil, err
	}

	return engine, nil
}

// removeExpired implements phase 1: for every expired node, discard its
// jump functions, path edges and procedure summaries, since any path
// edge or summary computed through a node that no longer exists (or
// whose edges changed) cannot be trusted.
func (u *incrementalUpdater[N, D, M, V]) removeExpired(engine *tabulationEngine[N, D, M, V], cs Changeset[N]) {
	for _, n := range cs.ExpiredNodes {
		engine.jumpFn.ForgetNode(n)
		engine.seen.ForgetNode(n)
		u.forgetSummariesAt(engine, n)
	}
	for _, edge := range cs.ExpiredEdges {
		engine.jumpFn.ForgetNode(edge.To)
		engine.seen.ForgetNode(edge.To)
		u.forgetSummariesAt(engine, edge.To)
	}
}

func (u *incrementalUpdater[N, D, M, V]) forgetSummariesAt(engine *tabulationEngine[N, D, M, V], n N) {
	defer func() { _ = recover() }()
	method := engine.icfg.MethodOf(n)
	for _, sp := range engine.icfg.StartPointsOf(method) {
		engine.summaries.ForgetMethod(sp)
	}
}

// buildChangeSet implements phase 2: for every edge endpoint touched by
// the changeset (that is not itself a brand-new node), find a containing
// loop header via the ICFG; if one exists, reprocessing must restart at
// the loop's predecessors rather than mid-loop, since re-entering inside
// a loop body can miss facts that only stabilize across an iteration.
// New nodes are scheduled directly, since they have no prior jump
// functions to reprocess but may carry their own initial seed.
func (u *incrementalUpdater[N, D, M, V]) buildChangeSet(
	engine *tabulationEngine[N, D, M, V], newICFG UpdatableICFG[N, D, M], cs Changeset[N],
) map[M]map[N]struct{} {
	work := make(map[M]map[N]struct{})
	add := func(n N) {
		m := engine.icfg.MethodOf(n)
		byN, ok := work[m]
		if !ok {
			byN = make(map[N]struct{})
			work[m] = byN
		}
		byN[n] = struct{}{}
	}

	isNew := make(map[N]struct{}, len(cs.NewNodes))
	for _, n := range cs.NewNodes {
		isNew[n] = struct{}{}
		add(n)
	}

	contain := func(srcN N) {
		if _, ok := isNew[srcN]; ok {
			return
		}
		if loopHead, ok := newICFG.LoopStartPointFor(srcN); ok {
			for _, pred := range newICFG.PredsOf(loopHead) {
				add(pred)
			}
			return
		}
		add(srcN)
	}

	for _, e := range cs.ExpiredEdges {
		contain(e.From)
	}
	for _, e := range cs.NewEdges {
		contain(e.From)
	}
	return work
}

// replay implements phase 3: for each method's containment set, replay
// starting nodes one at a time, suppressing a replay that a
// path-dominant sibling within the same set will reach anyway.
func (u *incrementalUpdater[N, D, M, V]) replay(
	ctx context.Context, engine *tabulationEngine[N, D, M, V], work map[M]map[N]struct{}, numThreads int,
) error {
	engine.mode = modeUpdate
	defer func() { engine.suppressAt = nil }()

	for _, byN := range work {
		candidates := byN
		engine.suppressAt = func(n N) bool {
			return predecessorRepropagated(engine.icfg, n, candidates)
		}

		for preLoop := range candidates {
			if engine.isChanged(preLoop) {
				continue
			}
			if predecessorRepropagated(engine.icfg, preLoop, candidates) {
				continue
			}

			engine.resetJumpSave()
			engine.exec = newWorkExecutor(engine.worklist, engine.dispatch)
			engine.exec.onDepthChange = func(depth int) {
				engine.metrics.SetWorklistDepth(engine.runID, depth)
			}

			if err := u.replayAt(ctx, engine, preLoop); err != nil {
				return err
			}
			if err := engine.exec.Run(ctx, numThreads); err != nil {
				return &SolverError[N]{Node: preLoop, Err: err}
			}
		}
	}
	return nil
}

// replayAt forces preLoop's already-tabulated facts back onto the
// worklist, plus any initial seed defined directly at preLoop (covering
// brand-new nodes with no prior jump functions to reschedule). This
// submits directly rather than going through propagate: preLoop's stored
// jump functions are by construction unchanged from the prior run, so
// propagate's join-changed gate would never fire and the replay would
// silently do nothing even though preLoop's outgoing ICFG edges may have
// changed — the whole reason this node needs reprocessing at all.
func (u *incrementalUpdater[N, D, M, V]) replayAt(ctx context.Context, engine *tabulationEngine[N, D, M, V], preLoop N) error {
	for pair, f := range engine.jumpFn.ReverseLookupByTarget(preLoop) {
		engine.jumpFn.JoinAt(pair.D1, preLoop, pair.D2, f)
		engine.seen.Add(pair.D1, preLoop, pair.D2)
		if err := engine.exec.Submit(ctx, PathEdge[N, D]{D1: pair.D1, N: preLoop, D2: pair.D2}); err != nil {
			return err
		}
	}
	if seeds, ok := u.solver.problem.InitialSeeds()[preLoop]; ok {
		for _, d := range seeds {
			f := u.solver.problem.IdentityFunction()
			engine.jumpFn.JoinAt(d, preLoop, d, f)
			engine.seen.Add(d, preLoop, d)
			if err := engine.exec.Submit(ctx, PathEdge[N, D]{D1: d, N: preLoop, D2: d}); err != nil {
				return err
			}
		}
	}
	return nil
}

// predecessorRepropagated is the spec §4.9 check: backward-BFS srcN's
// predecessors within method m (visited-set, self-exclusion); returns
// true if the walk encounters any other node in the candidate set S,
// which will independently repropagate down to srcN, making a direct
// replay of srcN redundant.
func predecessorRepropagated[N comparable, D comparable, M comparable](icfg ICFG[N, D, M], srcN N, candidates map[N]struct{}) bool {
	visited := map[N]struct{}{srcN: {}}
	queue := []N{srcN}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, p := range icfg.PredsOf(n) {
			if _, ok := visited[p]; ok {
				continue
			}
			visited[p] = struct{}{}
			if p != srcN {
				if _, ok := candidates[p]; ok {
					return true
				}
			}
			queue = append(queue, p)
		}
	}
	return false
}

// recomputeJoinPoints implements phase 4: for every node the replay
// touched, if it is an exit statement its stale end summaries are
// discarded; then if it turns out to be a join point (two or more
// incoming paths, counting call summaries as incoming edges via
// exitNodesForReturnSite) that a single-predecessor replay could have
// under-propagated, every predecessor's already-tabulated facts are
// resubmitted so the second path gets folded in too.
func (u *incrementalUpdater[N, D, M, V]) recomputeJoinPoints(
	ctx context.Context, engine *tabulationEngine[N, D, M, V], newICFG UpdatableICFG[N, D, M], numThreads int,
) error {
	engine.mode = modeCompute

	engine.exec = newWorkExecutor(engine.worklist, engine.dispatch)
	engine.exec.onDepthChange = func(depth int) {
		engine.metrics.SetWorklistDepth(engine.runID, depth)
	}

	for _, n := range engine.changedNodesSnapshot() {
		if engine.icfg.IsExitStmt(n) {
			engine.summaries.ForgetExit(n)
		}

		preds := make(map[N]struct{})
		for _, p := range engine.icfg.PredsOf(n) {
			preds[p] = struct{}{}
		}
		for _, p := range newICFG.ExitNodesForReturnSite(n) {
			preds[p] = struct{}{}
		}
		if len(preds) < 2 {
			continue
		}

		for p := range preds {
			for pair := range engine.jumpFn.ReverseLookupByTarget(p) {
				if err := engine.exec.Submit(ctx, PathEdge[N, D]{D1: pair.D1, N: p, D2: pair.D2}); err != nil {
					return err
				}
			}
		}
	}
	return engine.exec.Run(ctx, numThreads)
}
