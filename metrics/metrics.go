package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	currency "github.com/malusev998/currency-rates"
)

const (
	namespace = "rates_ingest"
	jobName   = "exchange_rates_ingest"
)

// Metrics holds the collectors of a single run.
type Metrics struct {
	Registry *prometheus.Registry

	runs           *prometheus.CounterVec
	recordsWritten *prometheus.CounterVec
	lastSuccess    prometheus.Gauge
	duration       prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of ingestion runs by outcome.",
			},
			[]string{"status"},
		),
		recordsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_written_total",
				Help:      "Total number of snapshots written, by key kind.",
			},
			[]string{"key"},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run.",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of ingestion runs.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
		),
	}

	m.Registry.MustRegister(m.runs, m.recordsWritten, m.lastSuccess, m.duration)

	return m
}

// RecordRun counts a finished run. status is "success" or an error kind.
func (m *Metrics) RecordRun(status string, started, finished time.Time) {
	m.runs.WithLabelValues(status).Inc()
	m.duration.Observe(finished.Sub(started).Seconds())

	if status == "success" {
		m.lastSuccess.Set(float64(finished.Unix()))
	}
}

// RecordWrite counts one stored record. A run that fails on its second write
// still reports the first one.
func (m *Metrics) RecordWrite(ratesID string) {
	key := "timestamp"

	if ratesID == currency.LatestRatesID {
		key = "latest"
	}

	m.recordsWritten.WithLabelValues(key).Inc()
}

// Push sends the registry to a Prometheus Pushgateway.
func (m *Metrics) Push(url string) error {
	return push.New(url, jobName).Gatherer(m.Registry).Push()
}
