package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce              sync.Once
	httpRequestsTotal         *prometheus.CounterVec
	httpLatencySeconds        *prometheus.HistogramVec
	httpErrorsTotal           *prometheus.CounterVec
	withdrawalsTotal          *prometheus.CounterVec
	withdrawalDurationSeconds *prometheus.HistogramVec
	retentionRowsMigrated     *prometheus.CounterVec
	sideEffectFailuresTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		withdrawalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_withdrawals_total",
			Help: "Account withdrawals by role and outcome.",
		}, []string{"role", "outcome"})

		withdrawalDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "account_withdrawal_duration_seconds",
			Help:    "Time spent processing an account withdrawal.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"role"})

		retentionRowsMigrated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retention_rows_migrated_total",
			Help: "Anonymized rows appended to the retention schema.",
		}, []string{"entity"})

		sideEffectFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_withdrawal_side_effect_failures_total",
			Help: "Best-effort withdrawal side effects that failed after commit.",
		}, []string{"effect"})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			withdrawalsTotal, withdrawalDurationSeconds, retentionRowsMigrated, sideEffectFailuresTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Withdrawals exposes the withdrawal outcome counter.
func Withdrawals() *prometheus.CounterVec {
	RegisterMetrics()
	return withdrawalsTotal
}

// WithdrawalDuration exposes the withdrawal latency histogram.
func WithdrawalDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return withdrawalDurationSeconds
}

// RetentionRowsMigrated exposes the per-entity migration counter.
func RetentionRowsMigrated() *prometheus.CounterVec {
	RegisterMetrics()
	return retentionRowsMigrated
}

// SideEffectFailures exposes the counter of failed best-effort side effects.
func SideEffectFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return sideEffectFailuresTotal
}
