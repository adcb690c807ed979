package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hechos"

// Load outcomes used as the "outcome" label of LoadsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the Prometheus counters, histograms, and gauges for loading,
// filtering, and publishing hechos.
type Metrics struct {
	LoadsTotal      *prometheus.CounterVec // labels: outcome={success,failure}
	LoadDuration    prometheus.Histogram
	RecordsReceived prometheus.Counter
	EventsRetained  prometheus.Counter
	RecordsDropped  prometheus.Counter
	EventsLoaded    prometheus.Gauge

	// Key resolution misses per canonical field, counted once per load.
	FieldResolutionMisses *prometheus.CounterVec // labels: field

	FilterApplications prometheus.Counter
	FilterResultSize   prometheus.Histogram
	FilterCache        *prometheus.CounterVec // labels: result={hit,miss}

	EventsPublished prometheus.Counter
	PublishErrors   prometheus.Counter
}

var (
	loadDurationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	resultSizeBuckets   = []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}
)

func newMetrics() *Metrics {
	return &Metrics{
		LoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Collection loads by outcome.",
		}, []string{"outcome"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a fetch-decode-normalize cycle.",
			Buckets:   loadDurationBuckets,
		}),
		RecordsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_received_total",
			Help:      "Raw records decoded from the data source.",
		}),
		EventsRetained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_retained_total",
			Help:      "Normalized events kept after coordinate checks.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Raw records dropped for missing or unparsable coordinates.",
		}),
		EventsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events_loaded",
			Help:      "Events in the current collection.",
		}),
		FieldResolutionMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_resolution_misses_total",
			Help:      "Canonical fields no raw key resolved to, per load.",
		}, []string{"field"}),
		FilterApplications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_applications_total",
			Help:      "Filter evaluations against the current collection.",
		}),
		FilterResultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_result_size",
			Help:      "Number of events matching a filter evaluation.",
			Buckets:   resultSizeBuckets,
		}),
		FilterCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_cache_total",
			Help:      "Filter result cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Normalized events written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish attempts for a loaded collection.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds every metric to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.LoadsTotal,
		m.LoadDuration,
		m.RecordsReceived,
		m.EventsRetained,
		m.RecordsDropped,
		m.EventsLoaded,
		m.FieldResolutionMisses,
		m.FilterApplications,
		m.FilterResultSize,
		m.FilterCache,
		m.EventsPublished,
		m.PublishErrors,
	}
}
