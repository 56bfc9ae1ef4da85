package icfgtest

import "testing"

func TestCallGraphStructure(t *testing.T) {
	g := CallGraph()

	if !g.IsCallStmt("c1") || !g.IsCallStmt("c2") {
		t.Fatal("c1 and c2 should be call statements")
	}
	if g.IsCallStmt("r1") {
		t.Fatal("r1 should not be a call statement")
	}
	if !g.IsStartPoint("m_start") || !g.IsStartPoint("callee_start") {
		t.Fatal("m_start and callee_start should be start points")
	}
	if !g.IsExitStmt("callee_exit") {
		t.Fatal("callee_exit should be an exit statement")
	}

	callees := g.CalleesOfCallAt("c1")
	if len(callees) != 1 || callees[0] != "callee" {
		t.Fatalf("CalleesOfCallAt(c1) = %v, want [callee]", callees)
	}
	returnSites := g.ReturnSitesOfCallAt("c1")
	if len(returnSites) != 1 || returnSites[0] != "r1" {
		t.Fatalf("ReturnSitesOfCallAt(c1) = %v, want [r1]", returnSites)
	}

	callers := g.CallersOf("callee")
	if len(callers) != 2 {
		t.Fatalf("CallersOf(callee) = %v, want 2 callers", callers)
	}
}

func TestComputeChangesetBetweenFixtures(t *testing.T) {
	old := WithoutSecondCall()
	changeset := CallGraph().ComputeChangeset(old)

	if changeset.Empty() {
		t.Fatal("changeset between WithoutSecondCall and CallGraph should not be empty")
	}
	if len(changeset.NewNodes) != 1 || changeset.NewNodes[0] != "c2" {
		t.Fatalf("NewNodes = %v, want [c2]", changeset.NewNodes)
	}
	foundExpired := false
	for _, e := range changeset.ExpiredEdges {
		if e.From == "r1" && e.To == "r2" {
			foundExpired = true
		}
	}
	if !foundExpired {
		t.Fatalf("expected r1->r2 to be an expired edge, got %v", changeset.ExpiredEdges)
	}
}

func TestComputeChangesetIdenticalGraphsIsEmpty(t *testing.T) {
	changeset := CallGraph().ComputeChangeset(CallGraph())
	if !changeset.Empty() {
		t.Fatalf("changeset between identical graphs should be empty, got %+v", changeset)
	}
}
