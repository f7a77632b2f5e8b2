package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HandoffMetrics records order handoff attempts per dispatch strategy.
type HandoffMetrics struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	orders   *prometheus.CounterVec
}

func NewHandoffMetrics(reg prometheus.Registerer) *HandoffMetrics {
	if reg == nil {
		return &HandoffMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_handoff_attempts_total",
		Help: "Dispatch attempts by strategy and outcome.",
	}, []string{"strategy", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_handoff_duration_seconds",
		Help:    "Time spent dispatching an encoded order.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_encoded_total",
		Help: "Orders encoded for handoff by order kind.",
	}, []string{"kind"})
	reg.MustRegister(attempts, duration, orders)
	return &HandoffMetrics{attempts: attempts, duration: duration, orders: orders}
}

func (h *HandoffMetrics) IncAttempt(strategy string, ok bool) {
	if h == nil || h.attempts == nil {
		return
	}
	h.attempts.WithLabelValues(normalizeLabel(strategy), resultLabel(ok)).Inc()
}

func (h *HandoffMetrics) ObserveDispatch(d time.Duration, ok bool) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(resultLabel(ok)).Observe(d.Seconds())
}

func (h *HandoffMetrics) IncEncoded(kind string) {
	if h == nil || h.orders == nil {
		return
	}
	h.orders.WithLabelValues(normalizeLabel(kind)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
