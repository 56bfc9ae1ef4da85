package ide

// Mode names a tabulation strategy. It is stored on the Solver's
// configuration by WithMode, but the Solver does not branch on it:
// SolveValue computes values whenever TabulationProblem.ComputeValues
// reports true, and incremental replay runs through Solver.Update,
// whatever Mode is set.
type Mode int

const (
	// ModeForward names plain SRH'96 tabulation to a fixpoint: path-edge
	// saturation only, no value computation.
	ModeForward Mode = iota

	// ModeIDE names tabulation followed by the two-phase IDE value
	// computation (jump-function composition followed by value
	// propagation).
	ModeIDE

	// ModeIncremental names applying a changeset against a previously
	// solved run: invalidation, re-seeding and replay instead of solving
	// from scratch.
	ModeIncremental
)

func (m Mode) String() string {
	switch m {
	case ModeForward:
		return "forward"
	case ModeIDE:
		return "ide"
	case ModeIncremental:
		return "incremental"
	default:
		return "unknown"
	}
}

// OptimizationMode tunes worklist scheduling (CC'10 extensions). It has no
// effect on the final fixpoint, only on how quickly and in what order it is
// reached: Join is commutative and idempotent, so the tabulated result does
// not depend on processing order.
type OptimizationMode int

const (
	// OptNone processes the worklist in submission (FIFO) order.
	OptNone OptimizationMode = iota

	// OptDeterministic is reserved for a future stable-ordering worklist
	// discipline (a derived sort key over path edges) for reproducible
	// single-worker runs. Currently behaves identically to OptNone: the
	// worklist itself is already FIFO under NumThreads=1, but several
	// internal lookups the engine consults while processing an item
	// (jump-function reverse lookups, summary fan-out) iterate Go maps,
	// whose order is unspecified, so run-to-run event ordering is not
	// yet fully reproducible even at NumThreads=1.
	OptDeterministic
)
