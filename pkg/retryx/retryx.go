// Package retryx wraps fallible operations so transient failures are retried
// a bounded number of times before surfacing.
//
// The wrappers return new callables; each invocation of a wrapped function
// owns its own attempt budget, so concurrent calls never share retries.
// Passing retries = 0 means a single attempt with the error passed straight
// through. The error of the final attempt is always returned verbatim.
package retryx

import (
	"context"
	"time"

	"github.com/Abraxas-365/flowx/pkg/logx"
	"github.com/Abraxas-365/flowx/pkg/metricx"
)

// Op is a zero-argument operation. Arguments and receivers are captured by
// the closure.
type Op[T any] func(ctx context.Context) (T, error)

// Func is a single-argument operation. Bundle multiple arguments in a struct.
type Func[A, R any] func(ctx context.Context, arg A) (R, error)

// Options configures a retry wrapper.
type Options struct {
	// Name labels the wrapper in logs and metrics.
	Name string

	// Delay is the pause between attempts. Zero retries immediately.
	Delay time.Duration

	// Metrics optionally records attempts. Nil records nothing.
	Metrics *metricx.Collector
}

func defaultOptions() Options {
	return Options{Name: "retry"}
}

// Option is a functional option for configuring a wrapper.
type Option func(*Options)

// WithName sets the label used in logs and metrics.
func WithName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithDelay sets a pause between attempts.
func WithDelay(d time.Duration) Option {
	return func(o *Options) {
		o.Delay = d
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metricx.Collector) Option {
	return func(o *Options) {
		o.Metrics = c
	}
}

// Wrap returns an operation that invokes op up to retries+1 times,
// returning the first success or the final attempt's error.
func Wrap[T any](retries int, op Op[T], options ...Option) Op[T] {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	return func(ctx context.Context) (T, error) {
		return run(ctx, retries, opts, op)
	}
}

// WrapFunc is Wrap for single-argument operations. The argument is reused
// unchanged across attempts.
func WrapFunc[A, R any](retries int, fn Func[A, R], options ...Option) Func[A, R] {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	return func(ctx context.Context, arg A) (R, error) {
		return run(ctx, retries, opts, func(ctx context.Context) (R, error) {
			return fn(ctx, arg)
		})
	}
}

// Do invokes op through a retry loop without constructing a wrapper first.
func Do[T any](ctx context.Context, retries int, op Op[T], options ...Option) (T, error) {
	opts := defaultOptions()
	for _, o := range options {
		o(&opts)
	}
	return run(ctx, retries, opts, op)
}

func run[T any](ctx context.Context, retries int, opts Options, op Op[T]) (T, error) {
	var zero T
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			if opts.Delay > 0 {
				select {
				case <-ctx.Done():
					return zero, ctx.Err()
				case <-time.After(opts.Delay):
				}
			} else if err := ctx.Err(); err != nil {
				return zero, err
			}
		}

		v, err := op(ctx)
		opts.Metrics.RecordRetryAttempt(opts.Name, attempt+1, err == nil)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt < retries {
			logx.WithError(err).WithField("name", opts.Name).
				Debugf("retryx: attempt %d/%d failed, retrying", attempt+1, retries+1)
		}
	}

	opts.Metrics.RecordRetryExhausted(opts.Name)
	return zero, lastErr
}
