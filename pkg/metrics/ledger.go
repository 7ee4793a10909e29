package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/ricemill-ledger/internal/domain"
)

// LedgerMetrics records ledger operation outcomes. A nil receiver is a no-op.
type LedgerMetrics struct {
	duration   *prometheus.HistogramVec
	operations *prometheus.CounterVec
	retries    *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger collectors on reg. A nil reg yields a no-op recorder.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ricemill",
		Subsystem: "ledger",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger operations including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ricemill",
		Subsystem: "ledger",
		Name:      "operations_total",
		Help:      "Ledger operations by outcome.",
	}, []string{"operation", "outcome"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ricemill",
		Subsystem: "ledger",
		Name:      "retries_total",
		Help:      "Ledger transaction retries after a lock timeout or conflict.",
	}, []string{"operation"})
	reg.MustRegister(duration, operations, retries)
	return &LedgerMetrics{duration: duration, operations: operations, retries: retries}
}

// Observe records one finished operation. The outcome label is "ok" or the error kind.
func (m *LedgerMetrics) Observe(operation string, err error, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.operations.WithLabelValues(op, outcome(err)).Inc()
}

// IncRetry counts one retried attempt.
func (m *LedgerMetrics) IncRetry(operation string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(operation)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return string(de.Kind)
	}
	return string(domain.KindInternal)
}

func normalizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
