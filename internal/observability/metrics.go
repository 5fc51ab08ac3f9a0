package observability

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for the sync pipelines and the
// HTTP front door. A nil *Metrics is valid and records nothing.
type Metrics struct {
	ticksRun     prometheus.Counter
	ticksSkipped prometheus.Counter
	tickDuration prometheus.Histogram

	ordersSynced       prometheus.Counter
	orderSyncFailures  prometheus.Counter
	returnsSynced      prometheus.Counter
	returnSyncFailures prometheus.Counter

	authorizations prometheus.Counter

	httpRequests *prometheus.CounterVec
}

// NewMetrics registers collectors on the default registerer.
func NewMetrics() *Metrics {
	return newMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newMetricsWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		ticksRun: registerCounter(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_sync_ticks_total",
			Help: "Total number of sync ticks executed",
		}),
		ticksSkipped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_sync_ticks_skipped_total",
			Help: "Total number of sync ticks skipped because a previous tick was still running",
		}),
		tickDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "loyalty_bridge_sync_tick_duration_seconds",
			Help:    "Duration of sync ticks in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ordersSynced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_orders_synced_total",
			Help: "Total number of orders delivered to the loyalty platform",
		}),
		orderSyncFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_order_sync_failures_total",
			Help: "Total number of orders dropped after a mapping or delivery failure",
		}),
		returnsSynced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_returns_synced_total",
			Help: "Total number of returns delivered to the loyalty platform",
		}),
		returnSyncFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_return_sync_failures_total",
			Help: "Total number of returns dropped after a mapping or delivery failure",
		}),
		authorizations: registerCounter(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_authorizations_total",
			Help: "Total number of upstream authorization calls issued",
		}),
		httpRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "loyalty_bridge_http_requests_total",
			Help: "Total number of HTTP requests served",
		}, []string{"path", "method", "status"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordTick increments the executed tick counter.
func (m *Metrics) RecordTick() {
	if m == nil {
		return
	}
	m.ticksRun.Inc()
}

// RecordTickSkipped increments the skipped tick counter.
func (m *Metrics) RecordTickSkipped() {
	if m == nil {
		return
	}
	m.ticksSkipped.Inc()
}

// RecordTickDuration records how long a tick took.
func (m *Metrics) RecordTickDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(duration.Seconds())
}

// RecordOrderSynced increments the delivered-order counter.
func (m *Metrics) RecordOrderSynced() {
	if m == nil {
		return
	}
	m.ordersSynced.Inc()
}

// RecordOrderSyncFailure increments the dropped-order counter.
func (m *Metrics) RecordOrderSyncFailure() {
	if m == nil {
		return
	}
	m.orderSyncFailures.Inc()
}

// RecordReturnSynced increments the delivered-return counter.
func (m *Metrics) RecordReturnSynced() {
	if m == nil {
		return
	}
	m.returnsSynced.Inc()
}

// RecordReturnSyncFailure increments the dropped-return counter.
func (m *Metrics) RecordReturnSyncFailure() {
	if m == nil {
		return
	}
	m.returnSyncFailures.Inc()
}

// RecordAuthorization increments the upstream authorization counter.
func (m *Metrics) RecordAuthorization() {
	if m == nil {
		return
	}
	m.authorizations.Inc()
}

// RecordRequest increments the HTTP request counter.
func (m *Metrics) RecordRequest(path, method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}
