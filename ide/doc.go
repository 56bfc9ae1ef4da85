// Package ide implements a generic interprocedural distributive environment
// (IDE) solver: a fixed-point engine that computes, for every program point
// of an interprocedural control-flow graph, a distributive environment
// mapping dataflow facts to lattice values.
//
// It follows the tabulation algorithm of Sagiv, Horwitz and Reps (SRH'96)
// with the worklist extensions of Naeem, Lhotak and Rodriguez (CC'10), plus
// an incremental-update mode that reuses prior results after CFG edits.
//
// The core consumes the client's ICFG, lattice, and flow/edge functions
// through the interfaces in icfg.go and lattice.go; it never builds an ICFG
// or parses source itself.
package ide
