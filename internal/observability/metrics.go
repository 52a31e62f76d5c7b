package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fire_inspection_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	ReportsConsumed   prometheus.Counter
	ReportsProduced   prometheus.Counter
	TransformErrors   prometheus.Counter
	ReportsUnresolved prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Extraction metrics.
	DevicesExtracted         prometheus.Counter
	EmergencyLightsExtracted prometheus.Counter
	NotesExtracted           prometheus.Counter

	// Building store metrics.
	BuildingsUpdated  prometheus.Counter
	BuildingsNotFound prometheus.Counter
	StoreRequests     *prometheus.CounterVec   // labels: op={find,save}, outcome={success,error,not_found}
	StoreCache        *prometheus.CounterVec   // labels: result={hit,miss}
	StoreDuration     *prometheus.HistogramVec // labels: op={find,save}
	StoreEnabled      prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.ReportsConsumed,
		m.ReportsProduced,
		m.TransformErrors,
		m.ReportsUnresolved,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DevicesExtracted,
		m.EmergencyLightsExtracted,
		m.NotesExtracted,
		m.BuildingsUpdated,
		m.BuildingsNotFound,
		m.StoreRequests,
		m.StoreCache,
		m.StoreDuration,
		m.StoreEnabled,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are not exposed on any
// registry, for one-shot commands that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics(true)
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	counter := func(name, h string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help(h)})
	}

	return &Metrics{
		ReportsConsumed:   counter("reports_consumed_total", "Total raw reports read from the source."),
		ReportsProduced:   counter("reports_produced_total", "Total parsed reports written to the sinks."),
		TransformErrors:   counter("transform_errors_total", "Total reports that failed to parse."),
		ReportsUnresolved: counter("reports_unresolved_total", "Total reports skipped because no building alias matched."),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the pipeline is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of reports per extracted batch."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      help("Duration of a complete batch extract-transform-load cycle."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DevicesExtracted:         counter("devices_extracted_total", "Fire alarm devices extracted from reports."),
		EmergencyLightsExtracted: counter("emergency_lights_extracted_total", "Emergency lights extracted from reports."),
		NotesExtracted:           counter("notes_extracted_total", "Deficiency notes extracted from reports."),
		BuildingsUpdated:         counter("buildings_updated_total", "Building documents written by the populator."),
		BuildingsNotFound:        counter("buildings_not_found_total", "Reports whose building document does not exist."),
		StoreRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_requests_total",
			Help:      help("Building store requests by operation and outcome."),
		}, []string{"op", "outcome"}),
		StoreCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_cache_total",
			Help:      help("Building cache lookups by result."),
		}, []string{"result"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_duration_seconds",
			Help:      help("Building store request duration in seconds."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),
		StoreEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_enabled",
			Help:      help("1 when building documents are populated, 0 otherwise."),
		}),
	}
}
