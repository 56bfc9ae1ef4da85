package ide

import (
	"time"

	"github.com/flowkit/idesolver/ide/emit"
)

// Option is a functional option for configuring a Solver.
//
// Example:
//
//	solver, err := ide.New[N, D, M, V](problem,
//	    ide.WithMode(ide.ModeIDE),
//	    ide.WithNumThreads(8),
//	    ide.WithMetrics(ide.NewPrometheusMetrics(reg)),
//	)
type Option func(*config) error

type config struct {
	mode         Mode
	optMode      OptimizationMode
	numThreads   int
	emitter      emit.Emitter
	metrics      *PrometheusMetrics
	tracerName   string
	worklistCap  int
	solveTimeout time.Duration
}

func defaultConfig() config {
	return config{
		mode:        ModeIDE,
		optMode:     OptNone,
		numThreads:  1,
		emitter:     emit.NullEmitter{},
		worklistCap: 4096,
	}
}

// WithMode records the tabulation strategy on the configuration. Default
// ModeIDE. The Solver does not branch on it (see Mode).
func WithMode(m Mode) Option {
	return func(c *config) error {
		c.mode = m
		return nil
	}
}

// WithOptimizationMode records the worklist scheduling mode. Default
// OptNone. The engine does not read it, so OptDeterministic behaves
// exactly like OptNone (see OptDeterministic).
func WithOptimizationMode(m OptimizationMode) Option {
	return func(c *config) error {
		c.optMode = m
		return nil
	}
}

// WithNumThreads sets the number of concurrent worklist workers.
//
// Default: 1 (single-threaded).
//
// Values above 1 enable the CC'10 concurrent worklist extensions: the
// summary/incoming table lock becomes the serialization point for call and
// exit processing. A TabulationProblem whose NumThreads is 1 or more
// overrides this value.
func WithNumThreads(n int) Option {
	return func(c *config) error {
		if n < 1 {
			n = 1
		}
		c.numThreads = n
		return nil
	}
}

// WithWorklistCapacity bounds the buffered channel backing the worklist.
// When full, submitting workers block, providing backpressure against
// runaway fact generation. Default 4096.
func WithWorklistCapacity(n int) Option {
	return func(c *config) error {
		if n < 1 {
			n = 1
		}
		c.worklistCap = n
		return nil
	}
}

// WithEmitter attaches an event sink that receives one "propagate" Event
// each time a path edge is scheduled; no other event kinds are emitted.
// Default emit.NullEmitter.
func WithEmitter(e emit.Emitter) Option {
	return func(c *config) error {
		if e != nil {
			c.emitter = e
		}
		return nil
	}
}

// WithMetrics attaches Prometheus instrumentation. Pass the result of
// NewPrometheusMetrics(reg). Metrics are disabled by default.
func WithMetrics(m *PrometheusMetrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithTracing records tracerName on the configuration (empty by
// default). The Solver does not read it and starts no OpenTelemetry spans
// of its own; span output comes only from an emit.OTelEmitter passed to
// WithEmitter.
func WithTracing(tracerName string) Option {
	return func(c *config) error {
		c.tracerName = tracerName
		return nil
	}
}

// WithSolveTimeout records a wall-clock bound on the configuration (zero
// by default). SolveValue and Update do not read it and apply no timeout;
// only cancellation of the caller's context.Context stops a run early.
func WithSolveTimeout(d time.Duration) Option {
	return func(c *config) error {
		c.solveTimeout = d
		return nil
	}
}
