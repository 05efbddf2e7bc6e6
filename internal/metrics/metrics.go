package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the ingestion and HTTP collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	fetchFailures *prometheus.CounterVec
	entries       *prometheus.CounterVec
	inserted      prometheus.Counter
	requests      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Ingestion runs by final status.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Wall time of one ingestion run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_fetch_failures_total",
			Help: "Feed fetches that failed, by source.",
		}, []string{"source"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_entries_total",
			Help: "Feed entries by pipeline outcome.",
		}, []string{"outcome"}),
		inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_articles_inserted_total",
			Help: "Articles acknowledged by the store.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path and status code.",
		}, []string{"path", "status"}),
	}
	reg.MustRegister(m.runs, m.runDuration, m.fetchFailures, m.entries, m.inserted, m.requests)
	return m
}

func (m *Metrics) RunFinished(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(took.Seconds())
}

func (m *Metrics) FetchFailed(source string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(source).Inc()
}

func (m *Metrics) Entry(outcome string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Inserted(n int) {
	if m == nil {
		return
	}
	m.inserted.Add(float64(n))
}

func (m *Metrics) Request(path string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
