package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records outcomes of inventory reconciliation runs.
type ReconcileMetrics struct {
	duration     *prometheus.HistogramVec
	unitsCreated *prometheus.CounterVec
	unitsDeleted *prometheus.CounterVec
	failures     *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconciliation metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_reconcile_duration_seconds",
		Help:    "Duration of inventory reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	unitsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_units_created_total",
		Help: "Units created by the reconciler.",
	}, []string{"trigger"})
	unitsDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_units_deleted_total",
		Help: "Unowned units removed by the reconciler.",
	}, []string{"trigger"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reconcile_failures_total",
		Help: "Reconciliation runs that rolled back.",
	}, []string{"trigger"})
	reg.MustRegister(duration, unitsCreated, unitsDeleted, failures)
	return &ReconcileMetrics{
		duration:     duration,
		unitsCreated: unitsCreated,
		unitsDeleted: unitsDeleted,
		failures:     failures,
	}
}

// ObserveDuration records the duration for the given trigger.
func (m *ReconcileMetrics) ObserveDuration(trigger string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// AddUnitsCreated counts units created during a run.
func (m *ReconcileMetrics) AddUnitsCreated(trigger string, n int) {
	if m == nil || m.unitsCreated == nil || n <= 0 {
		return
	}
	m.unitsCreated.WithLabelValues(normalizeLabel(trigger)).Add(float64(n))
}

// AddUnitsDeleted counts units deleted during a run.
func (m *ReconcileMetrics) AddUnitsDeleted(trigger string, n int) {
	if m == nil || m.unitsDeleted == nil || n <= 0 {
		return
	}
	m.unitsDeleted.WithLabelValues(normalizeLabel(trigger)).Add(float64(n))
}

// IncFailure counts a rolled-back reconciliation run.
func (m *ReconcileMetrics) IncFailure(trigger string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(trigger)).Inc()
}

func normalizeLabel(trigger string) string {
	if trigger == "" {
		return "unknown"
	}
	return trigger
}
