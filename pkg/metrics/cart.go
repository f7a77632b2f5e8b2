package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart ledger activity.
type CartMetrics struct {
	operations   *prometheus.CounterVec
	mirrorErrors *prometheus.CounterVec
	lineItems    prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart ledger operations by name and outcome.",
	}, []string{"operation", "result"})
	mirrorErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mirror_errors_total",
		Help: "Snapshot persistence failures by phase.",
	}, []string{"phase"})
	lineItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_cart_line_items",
		Help:    "Number of line items in a cart after a mutation.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(operations, mirrorErrors, lineItems)
	return &CartMetrics{
		operations:   operations,
		mirrorErrors: mirrorErrors,
		lineItems:    lineItems,
	}
}

// ObserveOperation counts one ledger operation. result is "ok" or an error code.
func (c *CartMetrics) ObserveOperation(operation, result string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

func (c *CartMetrics) IncMirrorError(phase string) {
	if c == nil || c.mirrorErrors == nil {
		return
	}
	c.mirrorErrors.WithLabelValues(normalizeLabel(phase)).Inc()
}

func (c *CartMetrics) ObserveLineItems(n int) {
	if c == nil || c.lineItems == nil {
		return
	}
	c.lineItems.Observe(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
