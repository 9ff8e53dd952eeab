package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	CartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Total number of cart mutations applied in memory",
		},
		[]string{"operation"},
	)

	CartPersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_persistence_failures_total",
			Help: "Total number of failed cart snapshot reads and writes",
		},
		[]string{"operation"},
	)

	CartSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_sessions_active",
			Help: "Number of cart sessions held in memory",
		},
	)
)

var (
	CheckoutRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_runs_total",
			Help: "Total number of checkout runs by result",
		},
		[]string{"result"},
	)

	CheckoutRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_run_duration_seconds",
			Help:    "Duration of whole checkout runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	UnitPurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unit_purchases_total",
			Help: "Total number of single-unit purchase attempts by result",
		},
		[]string{"result"},
	)

	PurchaseCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "purchase_call_duration_seconds",
			Help:    "Duration of purchase service calls in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "status_code"},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)
)

const (
	CheckoutResultCompleted = "completed"
	CheckoutResultPartial   = "partial"
	CheckoutResultFailed    = "failed"
	CheckoutResultEmpty     = "empty"
	CheckoutResultTransport = "transport_error"
	CheckoutResultRejected  = "rejected"
)

func TimeHTTPRequest(handler, method string) func(statusCode string) {
	start := time.Now()
	return func(statusCode string) {
		duration := time.Since(start).Seconds()
		HTTPRequestDuration.WithLabelValues(handler, method, statusCode).Observe(duration)
		HTTPRequestsTotal.WithLabelValues(handler, method, statusCode).Inc()
	}
}

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		duration := time.Since(start).Seconds()
		DBQueryDuration.WithLabelValues(queryType, table).Observe(duration)
	}
}

func TimePurchaseCall(endpoint string) func(statusCode string) {
	start := time.Now()
	return func(statusCode string) {
		PurchaseCallDuration.WithLabelValues(endpoint, statusCode).Observe(time.Since(start).Seconds())
	}
}

func TimeCheckoutRun() func() {
	start := time.Now()
	return func() {
		CheckoutRunDuration.Observe(time.Since(start).Seconds())
	}
}

func RecordCartMutation(operation string) {
	CartMutationsTotal.WithLabelValues(operation).Inc()
}

func RecordPersistenceFailure(operation string) {
	CartPersistenceFailuresTotal.WithLabelValues(operation).Inc()
}

func RecordCheckoutRun(result string) {
	CheckoutRunsTotal.WithLabelValues(result).Inc()
}

func RecordUnitPurchase(success bool) {
	if success {
		UnitPurchasesTotal.WithLabelValues("success").Inc()
		return
	}
	UnitPurchasesTotal.WithLabelValues("failure").Inc()
}

func CheckoutResult(succeeded, failed int) string {
	switch {
	case succeeded == 0 && failed == 0:
		return CheckoutResultEmpty
	case failed == 0:
		return CheckoutResultCompleted
	case succeeded == 0:
		return CheckoutResultFailed
	default:
		return CheckoutResultPartial
	}
}
