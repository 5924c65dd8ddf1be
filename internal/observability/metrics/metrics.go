package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics exposes counters for entity store operations and backfill
// decisions.
type CacheMetrics struct {
	operationsTotal *prometheus.CounterVec
	backfillTotal   *prometheus.CounterVec
}

func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Entity store operations by entity, operation and outcome",
		}, []string{"entity", "op", "outcome"}),
		backfillTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "cache",
			Name:      "backfill_total",
			Help:      "Dependent-fetch decisions by entity and result",
		}, []string{"entity", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.backfillTotal)
	return m
}

// ObserveOperation records one settled store operation.
func (m *CacheMetrics) ObserveOperation(entity, op string, err error) {
	if m == nil {
		return
	}
	outcome := "fulfilled"
	if err != nil {
		outcome = "rejected"
	}
	m.operationsTotal.WithLabelValues(entity, op, outcome).Inc()
}

// ObserveBackfill records one coordinator decision: "issued" for a fetch,
// "resolved" for a reference already cached, "failed" for a fetch error.
func (m *CacheMetrics) ObserveBackfill(entity, result string) {
	if m == nil {
		return
	}
	m.backfillTotal.WithLabelValues(entity, result).Inc()
}
