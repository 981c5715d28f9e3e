package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records storefront cart activity.
type CartMetrics struct {
	operations *prometheus.CounterVec
	checkouts  *prometheus.CounterVec
	cartSize   prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by name and outcome.",
	}, []string{"operation", "outcome"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_messages_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	cartSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_size_units",
		Help:    "Total unit count of carts at checkout.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(operations, checkouts, cartSize)
	return &CartMetrics{
		operations: operations,
		checkouts:  checkouts,
		cartSize:   cartSize,
	}
}

// ObserveOperation counts one cart operation. A nil err is recorded as "ok".
func (c *CartMetrics) ObserveOperation(op string, err error) {
	if c == nil || c.operations == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.operations.WithLabelValues(normalizeLabel(op), outcome).Inc()
}

// ObserveCheckout counts a checkout; empty carts are recorded separately.
func (c *CartMetrics) ObserveCheckout(units int, empty bool) {
	if c == nil || c.checkouts == nil {
		return
	}
	if empty {
		c.checkouts.WithLabelValues("empty").Inc()
		return
	}
	c.checkouts.WithLabelValues("built").Inc()
	c.cartSize.Observe(float64(units))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
