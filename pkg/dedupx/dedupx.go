// Package dedupx coalesces concurrent duplicate calls into one underlying
// execution.
//
// While a call for a given key is in flight, further calls with the same key
// join it instead of executing: every caller, leader and joiner alike,
// receives the same result and error. The in-flight registry entry lives
// exactly as long as the underlying execution, so a call arriving after
// completion starts a fresh one. Results are shared, never stored; combine
// with memox when results should outlive the flight.
package dedupx

import (
	"context"
	"sync"

	"github.com/Abraxas-365/flowx/pkg/digestx"
	"github.com/Abraxas-365/flowx/pkg/logx"
	"github.com/Abraxas-365/flowx/pkg/metricx"
)

// call is one in-flight execution shared between callers.
type call[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Group coalesces calls by key. The zero value is ready to use.
type Group[T any] struct {
	mu       sync.Mutex
	inflight map[string]*call[T]

	name    string
	metrics *metricx.Collector
}

// Options configures a Group.
type Options struct {
	// Name labels the group in metrics.
	Name string

	// Metrics optionally records leader/coalesced counts. Nil records nothing.
	Metrics *metricx.Collector
}

// Option is a functional option for configuring a Group.
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

// NewGroup creates a coalescing group.
func NewGroup[T any](options ...Option) *Group[T] {
	opts := Options{Name: "dedup"}
	for _, o := range options {
		o(&opts)
	}
	return &Group[T]{name: opts.Name, metrics: opts.Metrics}
}

// Do executes fn under key, coalescing with any in-flight execution for the
// same key. The leader runs fn exactly once; joiners block until it
// completes and receive the same result (error or not). A joiner whose ctx
// is cancelled stops waiting and returns ctx.Err(); the underlying execution
// is not cancelled.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*call[T])
	}
	if c, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		g.metrics.RecordDedupCoalesced(g.name)

		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	c := &call[T]{done: make(chan struct{})}
	g.inflight[key] = c
	g.mu.Unlock()
	g.metrics.RecordDedupLeader(g.name)

	c.val, c.err = fn(ctx)

	// Remove the entry before releasing waiters so a caller arriving after
	// completion starts a fresh flight.
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err
}

// Wrap returns a function that routes calls through g, keyed by name plus
// the digest of the argument. Calls whose argument cannot be digested bypass
// coalescing and invoke fn directly.
func Wrap[A, T any](g *Group[T], name string, fn func(ctx context.Context, arg A) (T, error)) func(ctx context.Context, arg A) (T, error) {
	return func(ctx context.Context, arg A) (T, error) {
		key, err := digestx.Key(name, arg)
		if err != nil {
			logx.WithError(err).WithField("name", name).
				Debug("dedupx: argument not digestible, bypassing coalescing")
			return fn(ctx, arg)
		}
		return g.Do(ctx, key, func(ctx context.Context) (T, error) {
			return fn(ctx, arg)
		})
	}
}
