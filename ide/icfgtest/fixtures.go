package icfgtest

// LinearGraph builds a single-procedure, call-free control-flow graph
// n1 -> n2 -> n3 -> n4 -> n5, all in method "main".
func LinearGraph() *Graph {
	nodes := []string{"n1", "n2", "n3", "n4", "n5"}
	var edges []Edge
	for i := 0; i < len(nodes)-1; i++ {
		edges = append(edges, Edge{From: nodes[i], To: nodes[i+1]})
	}
	methodOf := make(map[string]string, len(nodes))
	for _, n := range nodes {
		methodOf[n] = "main"
	}
	return NewGraph(edges, nil, methodOf,
		map[string]string{"main": "n1"},
		map[string][]string{"main": {"n5"}},
	)
}

// LinearReachingDefs returns a ReachingDefsProblem over LinearGraph where
// n1 defines "x", n3 kills and redefines it, demonstrating a fact that
// dies and is reborn along a straight-line path.
func LinearReachingDefs() *ReachingDefsProblem {
	return &ReachingDefsProblem{
		Graph: LinearGraph(),
		Rules: map[string]GenKill{
			"n1": {Gen: "x"},
			"n3": {Gen: "x", Kill: []string{"x"}},
		},
		Threads: 2,
	}
}

// LinearConstProp returns a ConstPropProblem over LinearGraph where n1
// assigns the literal 7 to "x" and n3 reassigns it from a
// non-constant source, so ValueAt("n5","x") should resolve to NAC while
// ValueAt("n2","x") resolves to Known(7).
func LinearConstProp() *ConstPropProblem {
	return &ConstPropProblem{
		Graph: LinearGraph(),
		Assigns: map[string]AssignRule{
			"n1": {Var: "x", Kind: AssignConst, Value: 7},
			"n3": {Var: "x", Kind: AssignNAC},
		},
		Threads: 2,
	}
}

// CallGraph builds a two-procedure graph: "main" calls "callee" at c1,
// returning to r1, then proceeds to m_end. "callee" is start -> mid ->
// exit. This is the minimal shape that exercises end-summary creation
// and reuse: a second, independent call site c2 (also in "main", calling
// "callee" again) should reuse callee's summary rather than
// re-tabulating it.
func CallGraph() *Graph {
	edges := []Edge{
		{From: "m_start", To: "c1"},
		{From: "c1", To: "r1"},
		{From: "r1", To: "c2"},
		{From: "c2", To: "r2"},
		{From: "r2", To: "m_end"},
		{From: "callee_start", To: "callee_mid"},
		{From: "callee_mid", To: "callee_exit"},
	}
	calls := []Call{
		{CallSite: "c1", Callee: "callee", ReturnSite: "r1"},
		{CallSite: "c2", Callee: "callee", ReturnSite: "r2"},
	}
	methodOf := map[string]string{
		"m_start": "main", "c1": "main", "r1": "main",
		"c2": "main", "r2": "main", "m_end": "main",
		"callee_start": "callee", "callee_mid": "callee", "callee_exit": "callee",
	}
	return NewGraph(edges, calls, methodOf,
		map[string]string{"main": "m_start", "callee": "callee_start"},
		map[string][]string{"main": {"m_end"}, "callee": {"callee_exit"}},
	)
}

// CallGraphReachingDefs returns a ReachingDefsProblem over CallGraph
// where "callee_mid" defines "g", a global visible to both call sites.
func CallGraphReachingDefs() *ReachingDefsProblem {
	return &ReachingDefsProblem{
		Graph: CallGraph(),
		Rules: map[string]GenKill{
			"callee_mid": {Gen: "g"},
		},
		Seeds:   map[string][]string{"m_start": {Zero}},
		Threads: 2,
	}
}

// WithoutSecondCall returns a copy of CallGraph with the second call
// site (c2 -> callee) removed, leaving r1 -> r2 as a direct edge.
// Used together with CallGraph to exercise ComputeChangeset and
// Solver.Update: going from this graph to CallGraph adds a call edge and
// a new return path without touching "main"'s other nodes.
func WithoutSecondCall() *Graph {
	edges := []Edge{
		{From: "m_start", To: "c1"},
		{From: "c1", To: "r1"},
		{From: "r1", To: "r2"},
		{From: "r2", To: "m_end"},
		{From: "callee_start", To: "callee_mid"},
		{From: "callee_mid", To: "callee_exit"},
	}
	calls := []Call{
		{CallSite: "c1", Callee: "callee", ReturnSite: "r1"},
	}
	methodOf := map[string]string{
		"m_start": "main", "c1": "main", "r1": "main",
		"r2": "main", "m_end": "main",
		"callee_start": "callee", "callee_mid": "callee", "callee_exit": "callee",
	}
	return NewGraph(edges, calls, methodOf,
		map[string]string{"main": "m_start", "callee": "callee_start"},
		map[string][]string{"main": {"m_end"}, "callee": {"callee_exit"}},
	)
}
