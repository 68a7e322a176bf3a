package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	remoteFetches   *prometheus.CounterVec
	recordsIngested *prometheus.CounterVec
	ingestFailures  *prometheus.CounterVec
	filterResults   *prometheus.HistogramVec
	httpDuration    *prometheus.HistogramVec
	subscribers     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.remoteFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patrol",
		Name:      "remote_fetches_total",
		Help:      "Requests to the stats backend by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	m.recordsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patrol",
		Name:      "records_ingested_total",
		Help:      "Records added to the snapshot by source",
	}, []string{"source"})
	m.ingestFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patrol",
		Name:      "ingest_failures_total",
		Help:      "Source polls that failed",
	}, []string{"source"})
	m.filterResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "patrol",
		Name:      "filter_result_size",
		Help:      "Number of records returned per filtered listing",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"kind"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "patrol",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
	m.subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "patrol",
		Name:      "stream_subscribers",
		Help:      "Live record stream subscribers",
	})

	m.registry.MustRegister(
		m.remoteFetches, m.recordsIngested, m.ingestFailures,
		m.filterResults, m.httpDuration, m.subscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveFetch matches statsclient.WithObserver.
func (m *Metrics) ObserveFetch(endpoint, outcome string) {
	m.remoteFetches.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) RecordIngested(source string) {
	m.recordsIngested.WithLabelValues(source).Inc()
}

func (m *Metrics) IngestFailed(source string) {
	m.ingestFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveFilter(kind string, n int) {
	if kind == "" {
		kind = "all"
	}
	m.filterResults.WithLabelValues(kind).Observe(float64(n))
}

func (m *Metrics) ObserveHTTP(route, status string, d time.Duration) {
	m.httpDuration.WithLabelValues(route, status).Observe(d.Seconds())
}

func (m *Metrics) SubscriberAdded()   { m.subscribers.Inc() }
func (m *Metrics) SubscriberRemoved() { m.subscribers.Dec() }
