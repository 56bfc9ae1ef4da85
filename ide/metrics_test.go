package ide

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusMetricsRecordsPathEdges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.IncPathEdges("run-1")
	m.IncPathEdges("run-1")

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := findCounter(t, metricFamilies, "idesolver_path_edges_total", "run-1")
	if found != 2 {
		t.Errorf("path_edges_total{run_id=run-1} = %v, want 2", found)
	}
}

func TestPrometheusMetricsDisableStopsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)
	m.Disable()

	m.IncPathEdges("run-1")
	m.SetWorklistDepth("run-1", 10)
	m.RecordPropagateLatency("run-1", "normal", time.Millisecond)

	metricFamilies, _ := reg.Gather()
	found := findCounter(t, metricFamilies, "idesolver_path_edges_total", "run-1")
	if found != 0 {
		t.Errorf("path_edges_total after Disable = %v, want 0", found)
	}

	m.Enable()
	m.IncPathEdges("run-1")
	metricFamilies, _ = reg.Gather()
	found = findCounter(t, metricFamilies, "idesolver_path_edges_total", "run-1")
	if found != 1 {
		t.Errorf("path_edges_total after Enable = %v, want 1", found)
	}
}

func TestPrometheusMetricsNilReceiverIsSafe(t *testing.T) {
	var m *PrometheusMetrics
	// None of these should panic on a nil *PrometheusMetrics, the state
	// the engine is in whenever WithMetrics was never applied.
	m.IncPathEdges("run-1")
	m.SetWorklistDepth("run-1", 1)
	m.SetInflightWorkers("run-1", 1)
	m.IncSummaryReuse("run-1")
	m.IncIncrementalRepropagation("run-1")
	m.RecordPropagateLatency("run-1", "normal", time.Millisecond)
}

func findCounter(t *testing.T, families []*dto.MetricFamily, name, runID string) float64 {
	t.Helper()
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "run_id" && label.GetValue() == runID {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
