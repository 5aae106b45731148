package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis pipeline.
type Metrics struct {
	BuildingsLoaded  prometheus.Counter
	HazardRowsLoaded prometheus.Counter
	RunActive        prometheus.Gauge

	// Matching metrics.
	CurveAssignments   *prometheus.CounterVec // labels: category={structure,contents,inventory}
	UnmatchedBuildings prometheus.Counter

	// Results metrics.
	LossRows           *prometheus.CounterVec // labels: category
	ValidationFindings *prometheus.CounterVec // labels: source={building,hazard,matching,results}_validation

	StageDuration *prometheus.HistogramVec // labels: stage
	RunDuration   prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BuildingsLoaded,
		m.HazardRowsLoaded,
		m.RunActive,
		m.CurveAssignments,
		m.UnmatchedBuildings,
		m.LossRows,
		m.ValidationFindings,
		m.StageDuration,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BuildingsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_loss",
			Name:      "buildings_loaded_total",
			Help:      "Buildings read from the inventory.",
		}),
		HazardRowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_loss",
			Name:      "hazard_rows_loaded_total",
			Help:      "Rows read from the hazard table.",
		}),
		RunActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flood_loss",
			Name:      "run_active",
			Help:      "1 while an analysis run is in flight, 0 otherwise.",
		}),
		CurveAssignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_loss",
			Name:      "curve_assignments_total",
			Help:      "Damage-function assignments produced by matching, by cost category.",
		}, []string{"category"}),
		UnmatchedBuildings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flood_loss",
			Name:      "unmatched_buildings_total",
			Help:      "Buildings no crosswalk rule survived for.",
		}),
		LossRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_loss",
			Name:      "loss_rows_total",
			Help:      "Monetized loss rows produced, by cost category.",
		}, []string{"category"}),
		ValidationFindings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flood_loss",
			Name:      "validation_findings_total",
			Help:      "Validation log entries appended, by source.",
		}, []string{"source"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flood_loss",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flood_loss",
			Name:      "run_duration_seconds",
			Help:      "End-to-end duration of an analysis run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
	}
}
