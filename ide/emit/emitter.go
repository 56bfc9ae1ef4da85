package emit

import "context"

// Emitter receives observability events from a solver run.
//
// Implementations must be non-blocking and thread-safe: the engine calls
// Emit from worklist worker goroutines and must not stall on a slow sink.
type Emitter interface {
	// Emit sends a single event. Must not panic; backends that can fail
	// should log the failure internally rather than propagate it.
	Emit(event Event)

	// EmitBatch sends multiple events, preserving order. Returns an
	// error only for catastrophic, non-per-event failures.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until buffered events are delivered or ctx expires.
	// Safe to call more than once.
	Flush(ctx context.Context) error
}
