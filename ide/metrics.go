package ide

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics collects Prometheus-compatible metrics for a solver run,
// namespaced "idesolver_".
//
// Exposed series:
//
//   - worklist_depth (gauge, run_id): pending path-edge items.
//   - inflight_workers (gauge, run_id): workers currently processing a node.
//   - propagate_latency_ms (histogram, run_id, kind): time to process one
//     worklist item, by kind (normal/call/exit).
//   - path_edges_total (counter, run_id): path edges tabulated.
//   - summary_reuses_total (counter, run_id): times an end summary was
//     applied instead of re-analyzing a callee.
//   - incremental_repropagations_total (counter, run_id): incremental
//     updates applied, one per Solver.Update call that computed a
//     changeset.
type PrometheusMetrics struct {
	worklistDepth    *prometheus.GaugeVec
	inflightWorkers  *prometheus.GaugeVec
	propagateLatency *prometheus.HistogramVec
	pathEdges        *prometheus.CounterVec
	summaryReuses    *prometheus.CounterVec
	incrementalRepro *prometheus.CounterVec

	mu      sync.RWMutex
	enabled bool
}

// NewPrometheusMetrics registers all solver metrics with registry. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for test isolation.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	f := promauto.With(registry)

	return &PrometheusMetrics{
		enabled: true,
		worklistDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "idesolver",
			Name:      "worklist_depth",
			Help:      "Pending path-edge items in the worklist",
		}, []string{"run_id"}),
		inflightWorkers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "idesolver",
			Name:      "inflight_workers",
			Help:      "Workers currently processing a worklist item",
		}, []string{"run_id"}),
		propagateLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "idesolver",
			Name:      "propagate_latency_ms",
			Help:      "Time to process one worklist item, in milliseconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
		}, []string{"run_id", "kind"}),
		pathEdges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idesolver",
			Name:      "path_edges_total",
			Help:      "Path edges tabulated",
		}, []string{"run_id"}),
		summaryReuses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idesolver",
			Name:      "summary_reuses_total",
			Help:      "Times an end summary was applied instead of re-analyzing a callee",
		}, []string{"run_id"}),
		incrementalRepro: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idesolver",
			Name:      "incremental_repropagations_total",
			Help:      "Incremental updates applied",
		}, []string{"run_id"}),
	}
}

func (pm *PrometheusMetrics) isEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}

// RecordPropagateLatency observes one worklist item's processing time.
func (pm *PrometheusMetrics) RecordPropagateLatency(runID, kind string, d time.Duration) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.propagateLatency.WithLabelValues(runID, kind).Observe(float64(d.Microseconds()) / 1000.0)
}

// SetWorklistDepth reports the current worklist size.
func (pm *PrometheusMetrics) SetWorklistDepth(runID string, depth int) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.worklistDepth.WithLabelValues(runID).Set(float64(depth))
}

// SetInflightWorkers reports how many workers are currently busy.
func (pm *PrometheusMetrics) SetInflightWorkers(runID string, count int) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.inflightWorkers.WithLabelValues(runID).Set(float64(count))
}

// IncPathEdges increments the path-edge counter.
func (pm *PrometheusMetrics) IncPathEdges(runID string) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.pathEdges.WithLabelValues(runID).Inc()
}

// IncSummaryReuse increments the summary-reuse counter.
func (pm *PrometheusMetrics) IncSummaryReuse(runID string) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.summaryReuses.WithLabelValues(runID).Inc()
}

// IncIncrementalRepropagation increments the incremental-replay counter.
func (pm *PrometheusMetrics) IncIncrementalRepropagation(runID string) {
	if pm == nil || !pm.isEnabled() {
		return
	}
	pm.incrementalRepro.WithLabelValues(runID).Inc()
}

// Disable stops recording, useful in tests that don't want to pay
// registration costs repeatedly across subtests sharing one registry.
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables recording after Disable.
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}
