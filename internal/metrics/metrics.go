package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	EmailsProcessed    prometheus.Counter
	OrdersExtracted    prometheus.Counter
	StrategyHits       *prometheus.CounterVec
	ParsePanics        prometheus.Counter
	ProcessingTime     prometheus.Histogram
	ProcurementBatches *prometheus.CounterVec
	ErrorsCount        *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		EmailsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "The total number of parsed emails",
		}),
		OrdersExtracted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_extracted_total",
			Help:      "The total number of part request records extracted from emails",
		}),
		StrategyHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_strategy_total",
			Help:      "Emails resolved per parser strategy",
		}, []string{"strategy"}),
		ParsePanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_panics_total",
			Help:      "Parser strategies that panicked and were converted to empty results",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "email_processing_time_seconds",
			Help:      "Time taken to process one stored email",
			Buckets:   prometheus.DefBuckets,
		}),
		ProcurementBatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "procurement_batches_total",
			Help:      "Procurement batches by validation result",
		}, []string{"result"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveParse(strategy string, orders int) {
	if m == nil {
		return
	}
	m.EmailsProcessed.Inc()
	m.OrdersExtracted.Add(float64(orders))
	if strategy == "" {
		strategy = "none"
	}
	m.StrategyHits.WithLabelValues(strategy).Inc()
}

func (m *Metrics) ObservePanic() {
	if m == nil {
		return
	}
	m.ParsePanics.Inc()
}

func (m *Metrics) ObserveDuration(start time.Time) {
	if m == nil {
		return
	}
	m.ProcessingTime.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveProcurement(result string) {
	if m == nil {
		return
	}
	m.ProcurementBatches.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveError(operation string) {
	if m == nil {
		return
	}
	m.ErrorsCount.WithLabelValues(operation).Inc()
}
