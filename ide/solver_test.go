package ide_test

import (
	"context"
	"testing"

	"github.com/flowkit/idesolver/ide"
	"github.com/flowkit/idesolver/ide/icfgtest"
)

func TestSolveValueLinearReachingDefs(t *testing.T) {
	problem := icfgtest.LinearReachingDefs()
	solver, err := ide.New[string, string, string, struct{}](problem, ide.WithNumThreads(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := solver.SolveValue(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("SolveValue: %v", err)
	}

	// n1 defines x; it should reach n2 still alive.
	if !hasFact(result.FactsAt("n2"), "x") {
		t.Errorf("expected x reaching n2, got %v", result.FactsAt("n2"))
	}
	// n3 kills and redefines x; the redefinition should still reach n5.
	if !hasFact(result.FactsAt("n5"), "x") {
		t.Errorf("expected x reaching n5 (redefined at n3), got %v", result.FactsAt("n5"))
	}
	// Zero fact should reach every node.
	for _, n := range []string{"n1", "n2", "n3", "n4", "n5"} {
		if !hasFact(result.FactsAt(n), icfgtest.Zero) {
			t.Errorf("expected zero fact reaching %s", n)
		}
	}
}

func TestSolveValueCallGraphSummaryReuse(t *testing.T) {
	problem := icfgtest.CallGraphReachingDefs()
	solver, err := ide.New[string, string, string, struct{}](problem, ide.WithNumThreads(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := solver.SolveValue(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("SolveValue: %v", err)
	}

	// "g" is defined inside callee_mid on every call; it must reach both
	// return sites (r1 after the first call, r2 after the second). At r1
	// it can only arrive through the callee's end summary; at r2 and
	// m_end it arrives both through the summary reused for the second
	// call site and along c2's call-to-return edge from r1.
	for _, n := range []string{"r1", "r2", "m_end"} {
		if !hasFact(result.FactsAt(n), "g") {
			t.Errorf("expected g reaching %s via callee summary, got %v", n, result.FactsAt(n))
		}
	}
}

func TestSolveValueConstPropComputesValues(t *testing.T) {
	problem := icfgtest.LinearConstProp()
	solver, err := ide.New[string, string, string, icfgtest.ConstValue](problem, ide.WithNumThreads(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := solver.SolveValue(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("SolveValue: %v", err)
	}

	v, ok := result.ValueAt("n2", "x")
	if !ok || v.Kind != icfgtest.Known || v.N != 7 {
		t.Fatalf("ValueAt(n2,x) = %v, ok=%v, want Known(7)", v, ok)
	}

	v, ok = result.ValueAt("n5", "x")
	if !ok || v.Kind != icfgtest.NAC {
		t.Fatalf("ValueAt(n5,x) = %v, ok=%v, want NAC", v, ok)
	}
}

func TestSolveValueWithoutComputeValuesLeavesValuesEmpty(t *testing.T) {
	problem := icfgtest.LinearReachingDefs()
	solver, err := ide.New[string, string, string, struct{}](problem)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := solver.SolveValue(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("SolveValue: %v", err)
	}
	if _, ok := result.ValueAt("n1", icfgtest.Zero); ok {
		t.Fatal("ValueAt should report false when the problem does not request value computation")
	}
}

func TestUpdateWithoutPriorRunReturnsErrNoPriorResult(t *testing.T) {
	problem := icfgtest.CallGraphReachingDefs()
	solver, err := ide.New[string, string, string, struct{}](problem)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = solver.Update(context.Background(), "run-1", icfgtest.CallGraph())
	if err != ide.ErrNoPriorResult {
		t.Fatalf("Update err = %v, want ErrNoPriorResult", err)
	}
}

func TestUpdateReplaysNewCallSite(t *testing.T) {
	graph := icfgtest.WithoutSecondCall()
	problem := &icfgtest.ReachingDefsProblem{
		Graph: graph,
		Rules: map[string]icfgtest.GenKill{"callee_mid": {Gen: "g"}},
		Seeds: map[string][]string{"m_start": {icfgtest.Zero}},
	}
	solver, err := ide.New[string, string, string, struct{}](problem)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := solver.SolveValue(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("SolveValue: %v", err)
	}
	if !hasFact(first.FactsAt("r2"), "g") {
		t.Fatalf("expected g reaching r2 via the single call site, got %v", first.FactsAt("r2"))
	}

	updated, err := solver.Update(context.Background(), "run-1", icfgtest.CallGraph())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !hasFact(updated.FactsAt("r1"), "g") {
		t.Errorf("expected g reaching r1 after adding the second call site, got %v", updated.FactsAt("r1"))
	}
	if !hasFact(updated.FactsAt("r2"), "g") {
		t.Errorf("expected g still reaching r2 after update, got %v", updated.FactsAt("r2"))
	}
}

func hasFact(facts []string, want string) bool {
	for _, f := range facts {
		if f == want {
			return true
		}
	}
	return false
}
