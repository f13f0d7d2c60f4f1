// Package memox memoizes function results behind an external cache.
//
// A [Memoizer] holds the cache collaborator and a TTL table; [Wrap] then
// decorates individual functions. Results are serialized as JSON and stored
// under "name:digest" keys. The cache is strictly fail-open: lookup errors
// count as misses, store failures are logged and dropped, and a failed
// underlying call is never cached.
package memox

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/Abraxas-365/flowx/pkg/digestx"
	"github.com/Abraxas-365/flowx/pkg/logx"
	"github.com/Abraxas-365/flowx/pkg/metricx"
)

// Cache is the external storage collaborator. Implementations must be safe
// for concurrent use. Get returns ok=false on miss; a non-nil error is
// treated by the memoizer as a miss, never surfaced to the caller.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// setTimeout bounds the detached fire-and-forget cache write.
const setTimeout = 5 * time.Second

// Memoizer wraps functions so their results are cached.
type Memoizer struct {
	cache   Cache
	ttls    map[string]time.Duration
	ttl     time.Duration
	jitter  bool
	metrics *metricx.Collector
}

// Options configures a Memoizer.
type Options struct {
	// TTLs maps function names to their cache TTL.
	TTLs map[string]time.Duration

	// DefaultTTL applies to every wrapped function without an explicit
	// TTLs entry.
	DefaultTTL time.Duration

	// Jitter perturbs each TTL once at wrap time by a uniform multiplier
	// in [0.9, 1.1], spreading expiry storms across instances. On by
	// default.
	Jitter bool

	// Metrics optionally records hits, misses and bypasses. Nil records
	// nothing.
	Metrics *metricx.Collector
}

// Option is a functional option for configuring a Memoizer.
type Option func(*Options)

// WithTTL sets the TTL for one wrapped function by name.
func WithTTL(name string, ttl time.Duration) Option {
	return func(o *Options) {
		if o.TTLs == nil {
			o.TTLs = make(map[string]time.Duration)
		}
		o.TTLs[name] = ttl
	}
}

// WithDefaultTTL sets the TTL applied to functions without an explicit one.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.DefaultTTL = ttl
	}
}

// WithoutJitter disables TTL jittering.
func WithoutJitter() Option {
	return func(o *Options) {
		o.Jitter = false
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metricx.Collector) Option {
	return func(o *Options) {
		o.Metrics = c
	}
}

// New creates a memoizer over the given cache.
func New(cache Cache, options ...Option) *Memoizer {
	opts := Options{Jitter: true}
	for _, o := range options {
		o(&opts)
	}
	return &Memoizer{
		cache:   cache,
		ttls:    opts.TTLs,
		ttl:     opts.DefaultTTL,
		jitter:  opts.Jitter,
		metrics: opts.Metrics,
	}
}

// ttlFor resolves and, when enabled, jitters the TTL for a wrapped function.
// Called once per Wrap, not per call.
func (m *Memoizer) ttlFor(name string) time.Duration {
	ttl, ok := m.ttls[name]
	if !ok {
		ttl = m.ttl
	}
	if ttl <= 0 {
		return 0
	}
	if m.jitter {
		ttl = time.Duration(float64(ttl) * (0.9 + 0.2*rand.Float64()))
	}
	return ttl
}

// Wrap decorates fn so results are cached under name plus the digest of the
// argument. A resolved TTL of zero disables caching for this function and
// calls pass straight through.
func Wrap[A, R any](m *Memoizer, name string, fn func(ctx context.Context, arg A) (R, error)) func(ctx context.Context, arg A) (R, error) {
	ttl := m.ttlFor(name)
	if ttl <= 0 {
		logx.WithField("name", name).Debug("memox: no TTL configured, caching disabled")
		return fn
	}

	return func(ctx context.Context, arg A) (R, error) {
		var zero R

		key, err := digestx.Key(name, arg)
		if err != nil {
			m.metrics.RecordMemoBypass(name)
			logx.WithError(err).WithField("name", name).
				Debug("memox: argument not digestible, bypassing cache")
			return fn(ctx, arg)
		}

		if raw, ok, getErr := m.cache.Get(ctx, key); getErr != nil {
			// Fail open: a broken cache degrades to a miss.
			logx.WithError(getErr).WithField("key", key).
				Warn("memox: cache lookup failed, treating as miss")
		} else if ok && raw != "" {
			var out R
			if decErr := json.Unmarshal([]byte(raw), &out); decErr == nil {
				m.metrics.RecordMemoHit(name)
				return out, nil
			}
			logx.WithField("key", key).
				Warn("memox: undecodable cache entry, treating as miss")
		}

		m.metrics.RecordMemoMiss(name)

		res, err := fn(ctx, arg)
		if err != nil {
			// Failures are never cached.
			return zero, err
		}

		if encoded, encErr := json.Marshal(res); encErr != nil {
			logx.WithError(encErr).WithField("name", name).
				Debug("memox: result not serializable, skipping store")
		} else {
			go m.store(key, string(encoded), ttl)
		}

		return res, nil
	}
}

// store performs the fire-and-forget cache write on a detached context so
// it survives the caller returning.
func (m *Memoizer) store(key, value string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), setTimeout)
	defer cancel()

	if err := m.cache.Set(ctx, key, value, ttl); err != nil {
		logx.WithError(err).WithField("key", key).
			Warn("memox: cache store failed")
	}
}
