package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Pipeline metrics
	PaymentsProcessed *prometheus.CounterVec
	PaymentAttempts   prometheus.Counter
	ProcessingDuration *prometheus.HistogramVec

	// Scanner metrics
	ScannerRequeued  prometheus.Counter
	ScannerSweepErrs prometheus.Counter

	// Queue metrics
	QueueEnqueued *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		PaymentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_processed_total",
				Help:      "Processing attempts by business outcome",
			},
			[]string{"outcome"},
		),
		PaymentAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_attempts_total",
				Help:      "Total attempt-ledger increments",
			},
		),
		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "payment_processing_duration_seconds",
				Help:      "Duration of one processing attempt",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		ScannerRequeued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scanner_requeued_total",
				Help:      "Payments re-enqueued by the scanner",
			},
		),
		ScannerSweepErrs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scanner_sweep_errors_total",
				Help:      "Scanner sweeps that failed",
			},
		),
		QueueEnqueued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queue_enqueued_total",
				Help:      "Jobs handed to the queue by producer",
			},
			[]string{"producer"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.PaymentsProcessed,
		m.PaymentAttempts,
		m.ProcessingDuration,
		m.ScannerRequeued,
		m.ScannerSweepErrs,
		m.QueueEnqueued,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
