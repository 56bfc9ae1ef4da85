// Package emit provides event emission and observability for IDE solver runs.
package emit

// Event represents an observability event emitted during tabulation:
// propagate steps, summary application, value updates and incremental
// replay.
type Event struct {
	// RunID identifies the solver run that emitted this event.
	RunID string

	// Node identifies the program point involved, formatted by the
	// caller (node types are generic in the solver and have no single
	// string form here).
	Node string

	// Method identifies the enclosing procedure, when applicable.
	Method string

	// Msg is a short event kind: "propagate", "summary_reuse",
	// "value_update", "incremental_invalidate", "incremental_replay".
	Msg string

	// Meta holds event-specific structured data, e.g. "fact", "kind",
	// "duration_ms".
	Meta map[string]interface{}
}
