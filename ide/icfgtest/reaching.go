package icfgtest

import "github.com/flowkit/idesolver/ide"

// Zero is the canonical zero fact (Λ) used by both fixture problems: the
// fact that always holds, seeding initial propagation at each method's
// start point.
const Zero = "Z"

// BoolLattice is the trivial one-point lattice used by ReachingDefsProblem,
// which only cares about path-edge reachability (plain IFDS), not values.
type BoolLattice struct{}

func (BoolLattice) Top() struct{}             { return struct{}{} }
func (BoolLattice) Bottom() struct{}          { return struct{}{} }
func (BoolLattice) Join(struct{}, struct{}) struct{} { return struct{}{} }

// boolIdentityEdgeFn is the only edge function ReachingDefsProblem ever
// needs: IFDS without IDE values has nothing but the identity function.
type boolIdentityEdgeFn struct{}

func (boolIdentityEdgeFn) ComposeWith(ide.EdgeFunction[struct{}]) ide.EdgeFunction[struct{}] {
	return boolIdentityEdgeFn{}
}
func (boolIdentityEdgeFn) JoinWith(ide.EdgeFunction[struct{}]) ide.EdgeFunction[struct{}] {
	return boolIdentityEdgeFn{}
}
func (boolIdentityEdgeFn) EqualTo(g ide.EdgeFunction[struct{}]) bool {
	_, ok := g.(boolIdentityEdgeFn)
	return ok
}
func (boolIdentityEdgeFn) ComputeTarget(struct{}) struct{} { return struct{}{} }

// GenKill describes, per node, which variable (if any) is freshly defined
// (Gen) and which variables stop being reaching definitions (Kill) across
// that node's Normal flow step.
type GenKill struct {
	Gen  string
	Kill []string
}

// ReachingDefsProblem is a plain (non-IDE) reaching-definitions analysis:
// D is the name of a variable with a reaching definition, the zero fact
// Zero always holds, and facts propagate along Normal edges according to
// the per-node GenKill rules, unchanged across calls and returns.
type ReachingDefsProblem struct {
	Graph   *Graph
	Rules   map[string]GenKill // keyed by node
	Seeds   map[string][]string
	Threads int
}

func (p *ReachingDefsProblem) FlowFunctions() ide.FlowFunctions[string, string, string] {
	return reachingFlow{p}
}
func (p *ReachingDefsProblem) EdgeFunctions() ide.EdgeFunctions[string, string, string, struct{}] {
	return reachingEdges{}
}
func (p *ReachingDefsProblem) InterproceduralCFG() ide.ICFG[string, string, string] { return p.Graph }
func (p *ReachingDefsProblem) InitialSeeds() map[string][]string {
	if p.Seeds != nil {
		return p.Seeds
	}
	seeds := make(map[string][]string)
	for _, n := range p.Graph.AllNonCallStartNodes() {
		if p.Graph.IsStartPoint(n) {
			seeds[n] = []string{Zero}
		}
	}
	return seeds
}
func (p *ReachingDefsProblem) ZeroValue() string             { return Zero }
func (p *ReachingDefsProblem) JoinLattice() ide.JoinLattice[struct{}] { return BoolLattice{} }
func (p *ReachingDefsProblem) AllTopFunction() ide.EdgeFunction[struct{}] { return boolIdentityEdgeFn{} }
func (p *ReachingDefsProblem) IdentityFunction() ide.EdgeFunction[struct{}] {
	return boolIdentityEdgeFn{}
}
func (p *ReachingDefsProblem) AutoAddZero() bool            { return true }
func (p *ReachingDefsProblem) FollowReturnsPastSeeds() bool { return false }
func (p *ReachingDefsProblem) NumThreads() int              { return p.Threads }
func (p *ReachingDefsProblem) ComputeValues() bool          { return false }

type reachingFlow struct{ p *ReachingDefsProblem }

func (f reachingFlow) Normal(curr, _ string) ide.FlowFunction[string] {
	rule, ok := f.p.Rules[curr]
	if !ok {
		return ide.FlowFunctionFunc[string](func(d string) []string { return []string{d} })
	}
	return ide.FlowFunctionFunc[string](func(d string) []string {
		for _, k := range rule.Kill {
			if d == k {
				return nil
			}
		}
		if rule.Gen != "" && d == Zero {
			return []string{d, rule.Gen}
		}
		return []string{d}
	})
}

func (f reachingFlow) Call(string, string) ide.FlowFunction[string] {
	return ide.FlowFunctionFunc[string](func(d string) []string { return []string{d} })
}

func (f reachingFlow) Return(string, string, string, string) ide.FlowFunction[string] {
	return ide.FlowFunctionFunc[string](func(d string) []string { return []string{d} })
}

func (f reachingFlow) CallToReturn(callSite, _ string) ide.FlowFunction[string] {
	return f.Normal(callSite, "")
}

type reachingEdges struct{}

func (reachingEdges) Normal(string, string, string, string) ide.EdgeFunction[struct{}] {
	return boolIdentityEdgeFn{}
}
func (reachingEdges) Call(string, string, string, string) ide.EdgeFunction[struct{}] {
	return boolIdentityEdgeFn{}
}
func (reachingEdges) Return(string, string, string, string, string, string) ide.EdgeFunction[struct{}] {
	return boolIdentityEdgeFn{}
}
func (reachingEdges) CallToReturn(string, string, string, string) ide.EdgeFunction[struct{}] {
	return boolIdentityEdgeFn{}
}
