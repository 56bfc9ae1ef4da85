package icfgtest

import "github.com/flowkit/idesolver/ide"

// IdentityEdgeFn is the edge-function identity: v flows through unchanged.
type IdentityEdgeFn struct{}

func (IdentityEdgeFn) ComposeWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return g
}
func (f IdentityEdgeFn) JoinWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return joinEdgeFn{a: f, b: g}
}
func (IdentityEdgeFn) EqualTo(g ide.EdgeFunction[ConstValue]) bool {
	_, ok := g.(IdentityEdgeFn)
	return ok
}
func (IdentityEdgeFn) ComputeTarget(v ConstValue) ConstValue { return v }

// ConstAssignEdgeFn ignores its input and always yields a fixed known
// constant, modeling an assignment "x := literal".
type ConstAssignEdgeFn struct {
	Value int
}

func (f ConstAssignEdgeFn) ComposeWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return constEdgeFn{ConstValue{Kind: Known, N: f.Value}}.ComposeWith(g)
}
func (f ConstAssignEdgeFn) JoinWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return joinEdgeFn{a: f, b: g}
}
func (f ConstAssignEdgeFn) EqualTo(g ide.EdgeFunction[ConstValue]) bool {
	other, ok := g.(ConstAssignEdgeFn)
	return ok && other.Value == f.Value
}
func (f ConstAssignEdgeFn) ComputeTarget(ConstValue) ConstValue {
	return ConstValue{Kind: Known, N: f.Value}
}

// constEdgeFn is the internal fixed-output function used when composing
// past a ConstAssignEdgeFn: whatever follows it still sees the constant,
// not the original input.
type constEdgeFn struct {
	out ConstValue
}

func (f constEdgeFn) ComposeWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return constEdgeFn{out: g.ComputeTarget(f.out)}
}
func (f constEdgeFn) JoinWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return joinEdgeFn{a: f, b: g}
}
func (f constEdgeFn) EqualTo(g ide.EdgeFunction[ConstValue]) bool {
	other, ok := g.(constEdgeFn)
	return ok && other.out == f.out
}
func (f constEdgeFn) ComputeTarget(ConstValue) ConstValue { return f.out }

// AllBottomEdgeFn always yields NAC, modeling an assignment from a
// runtime-dependent expression.
type AllBottomEdgeFn struct{}

func (AllBottomEdgeFn) ComposeWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return constEdgeFn{ConstValue{Kind: NAC}}.ComposeWith(g)
}
func (f AllBottomEdgeFn) JoinWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return joinEdgeFn{a: f, b: g}
}
func (AllBottomEdgeFn) EqualTo(g ide.EdgeFunction[ConstValue]) bool {
	_, ok := g.(AllBottomEdgeFn)
	return ok
}
func (AllBottomEdgeFn) ComputeTarget(ConstValue) ConstValue { return ConstValue{Kind: NAC} }

// joinEdgeFn represents the pointwise join of two edge functions, formed
// lazily and only evaluated at ComputeTarget time.
type joinEdgeFn struct {
	a, b ide.EdgeFunction[ConstValue]
}

func (f joinEdgeFn) ComposeWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return joinEdgeFn{a: f.a.ComposeWith(g), b: f.b.ComposeWith(g)}
}
func (f joinEdgeFn) JoinWith(g ide.EdgeFunction[ConstValue]) ide.EdgeFunction[ConstValue] {
	return joinEdgeFn{a: f, b: g}
}
func (f joinEdgeFn) EqualTo(g ide.EdgeFunction[ConstValue]) bool {
	other, ok := g.(joinEdgeFn)
	return ok && f.a.EqualTo(other.a) && f.b.EqualTo(other.b)
}
func (f joinEdgeFn) ComputeTarget(v ConstValue) ConstValue {
	lat := ConstLattice{}
	return lat.Join(f.a.ComputeTarget(v), f.b.ComputeTarget(v))
}

// Canonicalize collapses a join against two equal operands, and unwraps a
// join where one side is redundant, so chains built up over many
// propagation steps don't grow without bound.
func (f joinEdgeFn) Canonicalize() ide.EdgeFunction[ConstValue] {
	if f.a.EqualTo(f.b) {
		return f.a
	}
	return f
}
