package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCheckoutCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Checkout("ok", decimal.RequireFromString("270.00"))
	m.Checkout("ok", decimal.RequireFromString("30"))
	m.Checkout("insufficient_stock", decimal.Zero)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.revenue))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Checkout("ok", decimal.NewFromInt(1))
		m.Notification("sent")
		m.Request("GET", "/x", "200", time.Millisecond)
	})
}
