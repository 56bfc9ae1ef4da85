package ide

// EdgeFunction is a function V -> V labeling a realizable path edge or a
// jump function. Implementations form a monoid under ComposeWith, and must
// over-approximate soundly when EqualTo cannot decide exact semantic
// equality.
type EdgeFunction[V any] interface {
	// ComposeWith returns the function effect of applying this function
	// first and then g (function composition, associative).
	ComposeWith(g EdgeFunction[V]) EdgeFunction[V]

	// JoinWith returns the pointwise join of this function and g over the
	// client's lattice.
	JoinWith(g EdgeFunction[V]) EdgeFunction[V]

	// EqualTo reports semantic equality with g. Returning true when the
	// functions differ makes the engine treat a widened jump function as
	// unchanged and stop propagating it, giving a wrong fixpoint;
	// returning false when they are equal makes it reschedule an
	// unchanged jump function, which can keep the worklist from ever
	// draining.
	EqualTo(g EdgeFunction[V]) bool

	ComputeTarget(v V) V
}

// Canonicalizer is an optional capability an EdgeFunction may implement so
// that composition/join chains collapse (f∘identity, identity∘f, repeated
// joins of equal functions) instead of growing unboundedly. The engine
// calls Canonicalize opportunistically after ComposeWith/JoinWith.
type Canonicalizer[V any] interface {
	Canonicalize() EdgeFunction[V]
}

func canonicalize[V any](f EdgeFunction[V]) EdgeFunction[V] {
	if c, ok := f.(Canonicalizer[V]); ok {
		return c.Canonicalize()
	}
	return f
}

// PathEdge is the immutable triple <source fact d1, target node n, target
// fact d2> tabulated by the engine. In Update mode, d2 may stand for the
// "erased fact" sentinel used to propagate deletions (Erased=true); in
// normal computation Erased is always false and D2 holds a real fact.
//
// Erased is a discriminant rather than folding a sentinel value into D so
// that it can never collide with a client-supplied fact.
type PathEdge[N any, D any] struct {
	D1     D
	N      N
	D2     D
	Erased bool
}

// FactPair identifies a (source fact, target fact) pair, used by
// jumpFunctionTable.ReverseLookupByTarget and pathEdgeSet.AllAtNode.
type FactPair[D any] struct {
	D1 D
	D2 D
}
