package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Register adds the shared HTTP metrics to the registry.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(RequestCount, RequestDuration)
}

// Handler serves the registry in Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// PledgeMetrics tracks pledge lifecycle activity.
type PledgeMetrics struct {
	Transitions      *prometheus.CounterVec
	TransitionErrors *prometheus.CounterVec
	PledgeAmounts    prometheus.Histogram
	DispatchLatency  prometheus.Histogram
}

func NewPledgeMetrics(registry *prometheus.Registry) *PledgeMetrics {
	m := &PledgeMetrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pledge_transitions_total",
				Help: "Total pledge state transitions.",
			},
			[]string{"from", "to"},
		),
		TransitionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pledge_transition_errors_total",
				Help: "Total refused pledge operations by error kind.",
			},
			[]string{"kind"},
		),
		PledgeAmounts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pledge_amount",
				Help:    "Pledged amounts in major currency units.",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
		),
		DispatchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pledge_settlement_dispatch_seconds",
				Help:    "Payment processor dispatch latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	registry.MustRegister(m.Transitions, m.TransitionErrors, m.PledgeAmounts, m.DispatchLatency)
	return m
}

func (m *PledgeMetrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *PledgeMetrics) RecordTransitionError(errKind string) {
	if m == nil {
		return
	}
	m.TransitionErrors.WithLabelValues(errKind).Inc()
}

func (m *PledgeMetrics) RecordPledgeAmount(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.PledgeAmounts.Observe(amount.InexactFloat64())
}

func (m *PledgeMetrics) RecordSettlementDispatch(duration time.Duration) {
	if m == nil {
		return
	}
	m.DispatchLatency.Observe(duration.Seconds())
}
