package ide

// FlowFunction computes the set of facts reachable from d under one control
// flow step. Returning an empty slice means the fact does not survive the
// step.
type FlowFunction[D any] interface {
	Compute(d D) []D
}

// FlowFunctionFunc adapts a plain function to FlowFunction.
type FlowFunctionFunc[D any] func(d D) []D

func (f FlowFunctionFunc[D]) Compute(d D) []D { return f(d) }

// FlowFunctions supplies the client's intraprocedural and interprocedural
// fact-flow functions.
type FlowFunctions[N any, D any, M any] interface {
	Normal(curr, succ N) FlowFunction[D]
	Call(callSite N, callee M) FlowFunction[D]
	Return(callSite N, callee M, exitStmt N, retSite N) FlowFunction[D]
	CallToReturn(callSite N, retSite N) FlowFunction[D]
}

// EdgeFunctions supplies the client's edge-function factories, one per flow
// function kind, over the V lattice.
type EdgeFunctions[N any, D any, M any, V any] interface {
	Normal(curr N, currD D, succ N, succD D) EdgeFunction[V]
	Call(callSite N, callD D, callee M, calleeD D) EdgeFunction[V]
	Return(callSite N, callee M, exitStmt N, exitD D, retSite N, retD D) EdgeFunction[V]
	CallToReturn(callSite N, callD D, retSite N, retD D) EdgeFunction[V]
}

// ICFG is the client-supplied interprocedural control-flow graph capability
// set. It is treated as thread-safe read-only during a run.
type ICFG[N comparable, D any, M comparable] interface {
	SuccsOf(n N) []N
	PredsOf(n N) []N
	IsCallStmt(n N) bool
	IsExitStmt(n N) bool
	IsStartPoint(n N) bool
	CalleesOfCallAt(n N) []M
	ReturnSitesOfCallAt(n N) []N
	CallersOf(m M) []N
	CallsFromWithin(m M) []N
	StartPointsOf(m M) []N
	MethodOf(n N) M
	AllNonCallStartNodes() []N
}

// ChangesetEdge is a directed edge in an ICFG changeset.
type ChangesetEdge[N comparable] struct {
	From N
	To   N
}

// Changeset describes what differs between an old and new ICFG, as computed
// by UpdatableICFG.ComputeChangeset (incremental update phase 0).
type Changeset[N comparable] struct {
	ExpiredEdges []ChangesetEdge[N]
	NewEdges     []ChangesetEdge[N]
	ExpiredNodes []N
	NewNodes     []N
}

// Empty reports whether both edge sets are empty, the IncrementalUpdater's
// fast-return condition.
func (c Changeset[N]) Empty() bool {
	return len(c.ExpiredEdges) == 0 && len(c.NewEdges) == 0
}

// UpdatableICFG extends ICFG with the capabilities the incremental update
// protocol needs. Node identity must survive Merge: wrapper
// objects returned by the new ICFG must resolve consistently with
// references held by the old one.
type UpdatableICFG[N comparable, D any, M comparable] interface {
	ICFG[N, D, M]

	// ComputeChangeset diffs this (new) ICFG against the old one.
	ComputeChangeset(old UpdatableICFG[N, D, M]) Changeset[N]

	// LoopStartPointFor returns the loop header containing n, if any.
	LoopStartPointFor(n N) (N, bool)

	// ExitNodesForReturnSite returns the exit nodes whose return edges
	// target the given return site.
	ExitNodesForReturnSite(n N) []N

	// Merge absorbs identity from the old ICFG so that prior wrapper
	// references continue to resolve after the update.
	Merge(old UpdatableICFG[N, D, M])
}

// TabulationProblem bundles everything the solver needs from the client:
// the ICFG, the lattice, the flow/edge function factories, seeds and
// tuning knobs.
type TabulationProblem[N comparable, D comparable, M comparable, V any] interface {
	FlowFunctions() FlowFunctions[N, D, M]
	EdgeFunctions() EdgeFunctions[N, D, M, V]
	InterproceduralCFG() ICFG[N, D, M]
	InitialSeeds() map[N][]D
	ZeroValue() D
	JoinLattice() JoinLattice[V]

	// AllTopFunction returns the sentinel edge function never explicitly
	// stored: absence in JumpFunctionTable means AllTopFunction().
	AllTopFunction() EdgeFunction[V]

	// IdentityFunction returns the edge-function identity, used for the
	// self-loop propagated at the start of callee propagation (SRH line
	// 15) and as the composition identity.
	IdentityFunction() EdgeFunction[V]

	AutoAddZero() bool
	FollowReturnsPastSeeds() bool
	NumThreads() int
	ComputeValues() bool
}
