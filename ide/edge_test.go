package ide

import "testing"

// canonicalEdgeFn implements Canonicalizer, collapsing to addEdgeFn{n: 0} when
// marked identity, used to test that canonicalize() actually calls
// through to a client-supplied Canonicalize.
type canonicalEdgeFn struct{ isIdentity bool }

func (f canonicalEdgeFn) ComposeWith(g EdgeFunction[int]) EdgeFunction[int] { return g }
func (f canonicalEdgeFn) JoinWith(g EdgeFunction[int]) EdgeFunction[int]   { return g }
func (f canonicalEdgeFn) EqualTo(g EdgeFunction[int]) bool {
	other, ok := g.(canonicalEdgeFn)
	return ok && other.isIdentity == f.isIdentity
}
func (f canonicalEdgeFn) ComputeTarget(v int) int { return v }
func (f canonicalEdgeFn) Canonicalize() EdgeFunction[int] {
	if f.isIdentity {
		return addEdgeFn{n: 0}
	}
	return f
}

func TestCanonicalizeCallsClientHook(t *testing.T) {
	out := canonicalize[int](canonicalEdgeFn{isIdentity: true})
	if _, ok := out.(addEdgeFn); !ok {
		t.Fatalf("canonicalize should have collapsed to addEdgeFn, got %T", out)
	}
}

func TestCanonicalizePassesThroughNonCanonicalizer(t *testing.T) {
	out := canonicalize[int](addEdgeFn{n: 3})
	f, ok := out.(addEdgeFn)
	if !ok || f.n != 3 {
		t.Fatalf("canonicalize should pass through a non-Canonicalizer unchanged, got %v", out)
	}
}

func TestChangesetEmpty(t *testing.T) {
	var cs Changeset[string]
	if !cs.Empty() {
		t.Fatal("zero-value Changeset should be Empty")
	}
	cs.NewEdges = append(cs.NewEdges, ChangesetEdge[string]{From: "a", To: "b"})
	if cs.Empty() {
		t.Fatal("Changeset with a new edge should not be Empty")
	}
}
