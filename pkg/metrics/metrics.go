package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records counters for the order pipeline: placements,
// supplies, cancellations, and the live stream fan-out.
type PipelineMetrics struct {
	ordersPlaced    prometheus.Counter
	ordersCompleted prometheus.Counter
	ordersCanceled  prometheus.Counter
	itemsSupplied   prometheus.Counter
	placeDuration   prometheus.Histogram
	streamClients   prometheus.Gauge
	notifierWakeups *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed at the counter.",
	})
	ordersCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_completed_total",
		Help: "Orders marked complete.",
	})
	ordersCanceled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_canceled_total",
		Help: "Orders canceled before completion.",
	})
	itemsSupplied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "items_supplied_total",
		Help: "Individual item units handed over.",
	})
	placeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_place_duration_seconds",
		Help:    "Duration of order placement in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	streamClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stream_clients",
		Help: "Connected live-stream subscribers.",
	})
	notifierWakeups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_wakeups_total",
		Help: "Change notifier wakeups by event kind.",
	}, []string{"kind"})
	reg.MustRegister(
		ordersPlaced, ordersCompleted, ordersCanceled,
		itemsSupplied, placeDuration, streamClients, notifierWakeups,
	)
	return &PipelineMetrics{
		ordersPlaced:    ordersPlaced,
		ordersCompleted: ordersCompleted,
		ordersCanceled:  ordersCanceled,
		itemsSupplied:   itemsSupplied,
		placeDuration:   placeDuration,
		streamClients:   streamClients,
		notifierWakeups: notifierWakeups,
	}
}

// IncOrdersPlaced increments the placed-order counter.
func (m *PipelineMetrics) IncOrdersPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// IncOrdersCompleted increments the completed-order counter.
func (m *PipelineMetrics) IncOrdersCompleted() {
	if m == nil || m.ordersCompleted == nil {
		return
	}
	m.ordersCompleted.Inc()
}

// IncOrdersCanceled increments the canceled-order counter.
func (m *PipelineMetrics) IncOrdersCanceled() {
	if m == nil || m.ordersCanceled == nil {
		return
	}
	m.ordersCanceled.Inc()
}

// IncItemsSupplied increments the supplied-unit counter.
func (m *PipelineMetrics) IncItemsSupplied() {
	if m == nil || m.itemsSupplied == nil {
		return
	}
	m.itemsSupplied.Inc()
}

// ObservePlaceDuration records how long an order placement took.
func (m *PipelineMetrics) ObservePlaceDuration(duration time.Duration) {
	if m == nil || m.placeDuration == nil {
		return
	}
	m.placeDuration.Observe(duration.Seconds())
}

// StreamClientConnected bumps the subscriber gauge.
func (m *PipelineMetrics) StreamClientConnected() {
	if m == nil || m.streamClients == nil {
		return
	}
	m.streamClients.Inc()
}

// StreamClientDisconnected drops the subscriber gauge.
func (m *PipelineMetrics) StreamClientDisconnected() {
	if m == nil || m.streamClients == nil {
		return
	}
	m.streamClients.Dec()
}

// IncNotifierWakeup increments the wakeup counter for an event kind.
func (m *PipelineMetrics) IncNotifierWakeup(kind string) {
	if m == nil || m.notifierWakeups == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.notifierWakeups.WithLabelValues(kind).Inc()
}
