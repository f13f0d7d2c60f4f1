// Package metricx provides optional Prometheus instrumentation for the flowx
// combinators. A nil *Collector is valid and records nothing, so packages can
// thread one through unconditionally.
package metricx

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector aggregates the counters and gauges reported by the combinator
// packages. It is safe for concurrent use.
type Collector struct {
	retryAttempts   *prometheus.CounterVec
	retryExhausted  *prometheus.CounterVec
	memoRequests    *prometheus.CounterVec
	dedupRequests   *prometheus.CounterVec
	throttleRunning *prometheus.GaugeVec
	throttleQueued  *prometheus.GaugeVec
}

// NewCollector creates a collector registered on the default registerer.
func NewCollector() *Collector {
	return NewCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector using the supplied registerer.
func NewCollectorWithRegistry(registry prometheus.Registerer) *Collector {
	return &Collector{
		retryAttempts: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowx_retry_attempts_total",
				Help: "Total retry attempts, labelled by attempt number and outcome",
			},
			[]string{"name", "attempt", "outcome"},
		),
		retryExhausted: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowx_retry_exhausted_total",
				Help: "Total invocations whose retry budget was exhausted",
			},
			[]string{"name"},
		),
		memoRequests: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowx_memo_requests_total",
				Help: "Total memoized calls, labelled by result (hit, miss, bypass)",
			},
			[]string{"name", "result"},
		),
		dedupRequests: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowx_dedup_requests_total",
				Help: "Total coalesced calls, labelled by role (leader, coalesced)",
			},
			[]string{"name", "role"},
		),
		throttleRunning: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flowx_throttle_running",
				Help: "Calls currently running under a throttle limiter",
			},
			[]string{"name"},
		),
		throttleQueued: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flowx_throttle_queued",
				Help: "Calls currently queued behind a throttle limiter",
			},
			[]string{"name"},
		),
	}
}

// RecordRetryAttempt records one attempt of a wrapped invocation.
func (c *Collector) RecordRetryAttempt(name string, attempt int, success bool) {
	if c == nil {
		return
	}
	outcome := "error"
	if success {
		outcome = "success"
	}
	c.retryAttempts.WithLabelValues(name, strconv.Itoa(attempt), outcome).Inc()
}

// RecordRetryExhausted records an invocation that failed all attempts.
func (c *Collector) RecordRetryExhausted(name string) {
	if c == nil {
		return
	}
	c.retryExhausted.WithLabelValues(name).Inc()
}

// RecordMemoHit records a memoized call served from cache.
func (c *Collector) RecordMemoHit(name string) {
	if c == nil {
		return
	}
	c.memoRequests.WithLabelValues(name, "hit").Inc()
}

// RecordMemoMiss records a memoized call that reached the underlying function.
func (c *Collector) RecordMemoMiss(name string) {
	if c == nil {
		return
	}
	c.memoRequests.WithLabelValues(name, "miss").Inc()
}

// RecordMemoBypass records a call that skipped the cache entirely
// (digest or serialization failure).
func (c *Collector) RecordMemoBypass(name string) {
	if c == nil {
		return
	}
	c.memoRequests.WithLabelValues(name, "bypass").Inc()
}

// RecordDedupLeader records a call that executed the underlying function.
func (c *Collector) RecordDedupLeader(name string) {
	if c == nil {
		return
	}
	c.dedupRequests.WithLabelValues(name, "leader").Inc()
}

// RecordDedupCoalesced records a call that joined an in-flight execution.
func (c *Collector) RecordDedupCoalesced(name string) {
	if c == nil {
		return
	}
	c.dedupRequests.WithLabelValues(name, "coalesced").Inc()
}

// RecordThrottleRunning sets the running-call gauge for a limiter.
func (c *Collector) RecordThrottleRunning(name string, n int) {
	if c == nil {
		return
	}
	c.throttleRunning.WithLabelValues(name).Set(float64(n))
}

// RecordThrottleQueued sets the queued-call gauge for a limiter.
func (c *Collector) RecordThrottleQueued(name string, n int) {
	if c == nil {
		return
	}
	c.throttleQueued.WithLabelValues(name).Set(float64(n))
}
