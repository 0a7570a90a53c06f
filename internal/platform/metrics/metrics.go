package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the storefront's Prometheus collectors.
type Metrics struct {
	OrdersPlaced        prometheus.Counter
	CheckoutFailures    *prometheus.CounterVec
	OrderStatusChanges  *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	CartMutations       *prometheus.CounterVec
	UsersCreated        prometheus.Counter
	CheckoutDuration    prometheus.Histogram
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers against reg; tests pass a fresh registry so
// repeated construction does not panic on duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersPlaced: f.NewCounter(prometheus.CounterOpts{
			Name: "farmshop_orders_placed_total",
			Help: "Total number of orders placed through checkout",
		}),
		CheckoutFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmshop_checkout_failures_total",
			Help: "Checkout saga failures by step",
		}, []string{"step"}),
		OrderStatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmshop_order_status_changes_total",
			Help: "Order status changes by target status",
		}, []string{"status"}),
		NotificationsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmshop_notifications_failed_total",
			Help: "Best-effort notifications that failed to send, by template",
		}, []string{"template"}),
		CartMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmshop_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"}),
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "farmshop_users_created_total",
			Help: "Total number of users signed up",
		}),
		CheckoutDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "farmshop_checkout_duration_seconds",
			Help:    "Duration of checkout confirmation",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// The helpers below are nil-safe so services can run without metrics.

func (m *Metrics) IncrementOrdersPlaced() {
	if m != nil {
		m.OrdersPlaced.Inc()
	}
}

func (m *Metrics) IncrementCheckoutFailure(step string) {
	if m != nil {
		m.CheckoutFailures.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) IncrementStatusChange(status string) {
	if m != nil {
		m.OrderStatusChanges.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementNotificationFailed(template string) {
	if m != nil {
		m.NotificationsFailed.WithLabelValues(template).Inc()
	}
}

func (m *Metrics) IncrementCartMutation(op string) {
	if m != nil {
		m.CartMutations.WithLabelValues(op).Inc()
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

// ObserveCheckout records a checkout duration. Call with time.Now() at the start.
func (m *Metrics) ObserveCheckout(start time.Time) {
	if m != nil {
		m.CheckoutDuration.Observe(time.Since(start).Seconds())
	}
}
