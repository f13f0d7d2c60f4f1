// Package throttlex caps the number of concurrent executions of a function,
// queueing excess calls with strict FIFO admission.
//
// A call arriving while fewer than max executions are running starts
// immediately. Otherwise it joins a queue and blocks; each finishing
// execution hands its slot to the oldest queued caller. Queued calls are
// never rejected, only deferred. The cap is fixed at construction.
package throttlex

import (
	"context"
	"sync"

	"github.com/Abraxas-365/flowx/pkg/metricx"
)

// waiter is one queued call. granted and abandoned are guarded by the
// limiter mutex to settle the race between slot hand-off and cancellation.
type waiter struct {
	ready     chan struct{}
	granted   bool
	abandoned bool
}

// Limiter throttles calls to at most max concurrent executions.
type Limiter struct {
	mu      sync.Mutex
	max     int
	running int
	queue   []*waiter

	name    string
	metrics *metricx.Collector
}

// Options configures a Limiter.
type Options struct {
	// Name labels the limiter in metrics.
	Name string

	// Metrics optionally records running/queued gauges. Nil records nothing.
	Metrics *metricx.Collector
}

// Option is a functional option for configuring a Limiter.
type Option func(*Options)

// WithName sets the label used in metrics.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metricx.Collector) Option {
	return func(o *Options) {
		o.Metrics = c
	}
}

// New creates a limiter allowing at most max concurrent executions.
// Values below 1 are clamped to 1.
func New(max int, options ...Option) *Limiter {
	if max < 1 {
		max = 1
	}
	opts := Options{Name: "throttle"}
	for _, o := range options {
		o(&opts)
	}
	return &Limiter{max: max, name: opts.Name, metrics: opts.Metrics}
}

// Max returns the concurrency cap.
func (l *Limiter) Max() int {
	return l.max
}

// Running returns the number of executions currently holding a slot.
func (l *Limiter) Running() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Queued returns the number of callers currently waiting for a slot.
func (l *Limiter) Queued() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, w := range l.queue {
		if !w.abandoned {
			n++
		}
	}
	return n
}

// publishLocked updates gauges. Callers hold l.mu.
func (l *Limiter) publishLocked() {
	l.metrics.RecordThrottleRunning(l.name, l.running)
	queued := 0
	for _, w := range l.queue {
		if !w.abandoned {
			queued++
		}
	}
	l.metrics.RecordThrottleQueued(l.name, queued)
}

// acquire blocks until the caller holds a slot or ctx is cancelled.
func (l *Limiter) acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.running < l.max {
		l.running++
		l.publishLocked()
		l.mu.Unlock()
		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	l.queue = append(l.queue, w)
	l.publishLocked()
	l.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		if w.granted {
			// A slot was handed over concurrently with cancellation;
			// pass it straight on so it is not lost.
			l.releaseLocked()
		} else {
			w.abandoned = true
			l.publishLocked()
		}
		l.mu.Unlock()
		return ctx.Err()
	}
}

// releaseLocked hands the slot to the oldest live waiter, or frees it when
// the queue is empty. Callers hold l.mu.
func (l *Limiter) releaseLocked() {
	for len(l.queue) > 0 {
		w := l.queue[0]
		l.queue = l.queue[1:]
		if w.abandoned {
			continue
		}
		// Transfer the slot without touching l.running: the waiter now
		// owns it.
		w.granted = true
		close(w.ready)
		l.publishLocked()
		return
	}
	l.running--
	l.publishLocked()
}

func (l *Limiter) release() {
	l.mu.Lock()
	l.releaseLocked()
	l.mu.Unlock()
}

// Do runs fn under the limiter, blocking while the cap is reached. A caller
// cancelled while queued returns ctx.Err() without ever holding a slot.
func Do[T any](ctx context.Context, l *Limiter, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := l.acquire(ctx); err != nil {
		var zero T
		return zero, err
	}
	defer l.release()
	return fn(ctx)
}

// Wrap returns a function that routes every call through the limiter.
func Wrap[A, R any](l *Limiter, fn func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	return func(ctx context.Context, arg A) (R, error) {
		return Do(ctx, l, func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		})
	}
}
