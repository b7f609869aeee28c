package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"time"
)

// Metrics groups the storefront collectors. A nil *Metrics is a no-op so
// components can run without instrumentation in tests.
type Metrics struct {
	checkouts      *prometheus.CounterVec
	revenue        prometheus.Counter
	notifications  *prometheus.CounterVec
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_checkouts_total",
				Help: "Checkout attempts by result",
			},
			[]string{"result"},
		),
		revenue: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_revenue_usd_total",
				Help: "Sum of committed order totals in USD",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_stock_notifications_total",
				Help: "Back-in-stock notifications by result",
			},
			[]string{"result"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	reg.MustRegister(m.checkouts, m.revenue, m.notifications, m.requestCounter, m.requestLatency)
	return m
}

func (m *Metrics) Checkout(result string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
	if result == "ok" {
		f, _ := total.Float64()
		m.revenue.Add(f)
	}
}

func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) Request(method, route, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.requestCounter.WithLabelValues(method, route, status).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(took.Seconds())
}
