package icfgtest

import "github.com/flowkit/idesolver/ide"

// AssignKind classifies what value an AssignRule contributes.
type AssignKind int

const (
	AssignConst AssignKind = iota
	AssignNAC
)

// AssignRule describes a single assignment "Var := ..." at a node: either
// a literal constant or an expression the analysis cannot track
// (AssignNAC), e.g. a value read from I/O.
type AssignRule struct {
	Var   string
	Kind  AssignKind
	Value int
}

// ConstPropProblem is a toy interprocedural linear constant propagation
// problem: an IDE instance (as opposed to ReachingDefsProblem's plain
// IFDS) since assignments carry a lattice value through edge functions
// rather than a bare boolean reachability fact.
type ConstPropProblem struct {
	Graph   *Graph
	Assigns map[string]AssignRule // keyed by node
	Seeds   map[string][]string
	Threads int
}

func (p *ConstPropProblem) FlowFunctions() ide.FlowFunctions[string, string, string] {
	return constPropFlow{p}
}
func (p *ConstPropProblem) EdgeFunctions() ide.EdgeFunctions[string, string, string, ConstValue] {
	return constPropEdges{p}
}
func (p *ConstPropProblem) InterproceduralCFG() ide.ICFG[string, string, string] { return p.Graph }
func (p *ConstPropProblem) InitialSeeds() map[string][]string {
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
func (p *ConstPropProblem) ZeroValue() string { return Zero }
func (p *ConstPropProblem) JoinLattice() ide.JoinLattice[ConstValue] { return ConstLattice{} }
func (p *ConstPropProblem) AllTopFunction() ide.EdgeFunction[ConstValue] {
	return constEdgeFn{out: ConstValue{Kind: Undef}}
}
func (p *ConstPropProblem) IdentityFunction() ide.EdgeFunction[ConstValue] { return IdentityEdgeFn{} }
func (p *ConstPropProblem) AutoAddZero() bool                              { return true }
func (p *ConstPropProblem) FollowReturnsPastSeeds() bool                   { return false }
func (p *ConstPropProblem) NumThreads() int                                { return p.Threads }
func (p *ConstPropProblem) ComputeValues() bool                            { return true }

type constPropFlow struct{ p *ConstPropProblem }

func (f constPropFlow) Normal(curr, _ string) ide.FlowFunction[string] {
	rule, hasRule := f.p.Assigns[curr]
	return ide.FlowFunctionFunc[string](func(d string) []string {
		if hasRule && d == rule.Var {
			return nil
		}
		if hasRule && d == Zero {
			return []string{d, rule.Var}
		}
		return []string{d}
	})
}

func (f constPropFlow) Call(string, string) ide.FlowFunction[string] {
	return ide.FlowFunctionFunc[string](func(d string) []string { return []string{d} })
}

func (f constPropFlow) Return(string, string, string, string) ide.FlowFunction[string] {
	return ide.FlowFunctionFunc[string](func(d string) []string { return []string{d} })
}

func (f constPropFlow) CallToReturn(callSite, _ string) ide.FlowFunction[string] {
	return f.Normal(callSite, "")
}

type constPropEdges struct{ p *ConstPropProblem }

func (e constPropEdges) Normal(curr string, currD string, _ string, succD string) ide.EdgeFunction[ConstValue] {
	rule, hasRule := e.p.Assigns[curr]
	if hasRule && currD == Zero && succD == rule.Var {
		if rule.Kind == AssignConst {
			return ConstAssignEdgeFn{Value: rule.Value}
		}
		return AllBottomEdgeFn{}
	}
	return IdentityEdgeFn{}
}

func (e constPropEdges) Call(string, string, string, string) ide.EdgeFunction[ConstValue] {
	return IdentityEdgeFn{}
}

func (e constPropEdges) Return(string, string, string, string, string, string) ide.EdgeFunction[ConstValue] {
	return IdentityEdgeFn{}
}

func (e constPropEdges) CallToReturn(callSite string, callD string, _ string, retD string) ide.EdgeFunction[ConstValue] {
	return e.Normal(callSite, callD, "", retD)
}
