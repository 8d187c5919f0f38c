package observability

import (
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the back office.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	payments        *prometheus.CounterVec
	ledgerConflicts *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	sseClients      prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backoffice_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		payments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_payments_total",
				Help: "Ledger payments processed, by direction and outcome.",
			},
			[]string{"direction", "outcome"},
		),
		ledgerConflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_ledger_conflict_retries_total",
				Help: "Optimistic-lock conflicts retried, by operation.",
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backoffice_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		sseClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "backoffice_sse_clients",
				Help: "Currently connected chat SSE clients.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrPayment counts a processed payment by direction and outcome
// (accepted or rejected).
func (m *Metrics) IncrPayment(direction, outcome string) {
	m.payments.WithLabelValues(direction, outcome).Inc()
}

// IncrLedgerConflict counts an optimistic-lock retry.
func (m *Metrics) IncrLedgerConflict(operation string) {
	m.ledgerConflicts.WithLabelValues(operation).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// SSEClientConnected / SSEClientDisconnected track the chat stream gauge.
func (m *Metrics) SSEClientConnected()    { m.sseClients.Inc() }
func (m *Metrics) SSEClientDisconnected() { m.sseClients.Dec() }

// LedgerSnapshot returns the aggregate counter view served by the
// GET /v1/metrics/ledger endpoint.
func (m *Metrics) LedgerSnapshot() *domain.LedgerMetricsSnapshot {
	accepted := getCounterValue(m.payments, domain.DirectionIncome, "accepted") +
		getCounterValue(m.payments, domain.DirectionExpense, "accepted")
	rejected := getCounterValue(m.payments, domain.DirectionIncome, "rejected") +
		getCounterValue(m.payments, domain.DirectionExpense, "rejected")

	conflicts := float64(0)
	for _, op := range []string{"record_income", "record_expense", "pay_debt", "edit_payment", "delete_payment"} {
		conflicts += getCounterValue(m.ledgerConflicts, op)
	}

	hits := getCounterValue(m.cacheHits, "region")
	misses := getCounterValue(m.cacheMisses, "region")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.LedgerMetricsSnapshot{
		PaymentsRecorded: accepted,
		PaymentsRejected: rejected,
		ConflictRetries:  conflicts,
		CacheHitRate:     hitRate,
		SSEClients:       getGaugeValue(m.sseClients),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func getGaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		return 0
	}
	if m.Gauge != nil && m.Gauge.Value != nil {
		return *m.Gauge.Value
	}
	return 0
}
