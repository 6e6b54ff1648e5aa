// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"sync"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOKCapacity    = 16
	defaultErrorCapacity = 16
)

// spanKey uniquely identifies a span by trace and span ID, the same way
// the zpages SpanProcessor reference keys its active-span map.
type spanKey [16 + 8]byte

func keyFor(sc trace.SpanContext) spanKey {
	var k spanKey
	tid := sc.TraceID()
	copy(k[0:16], tid[:])
	sid := sc.SpanID()
	copy(k[16:24], sid[:])
	return k
}

// nameBucket is the unit of concurrency for Cache: one mutex guards the
// running set and all rings for a single span name.
type nameBucket struct {
	mu      sync.Mutex
	running map[spanKey]sdktrace.ReadOnlySpan
	ok      [numLatencyBuckets]*ring[FinishedSpanSnapshot]
	errors  [numErrorCodes]*ring[FinishedSpanSnapshot]
}

func newNameBucket(okCap, errCap int) *nameBucket {
	b := &nameBucket{running: make(map[spanKey]sdktrace.ReadOnlySpan)}
	for i := range b.ok {
		b.ok[i] = newRing[FinishedSpanSnapshot](okCap)
	}
	for i := range b.errors {
		b.errors[i] = newRing[FinishedSpanSnapshot](errCap)
	}
	return b
}

// nameSnapshot is the point-in-time view of a single name's bucket
// returned by Cache.Snapshot.
type nameSnapshot struct {
	Running []sdktrace.ReadOnlySpan
	OK      [numLatencyBuckets][]FinishedSpanSnapshot
	Errors  [numErrorCodes][]FinishedSpanSnapshot
}

// CacheSnapshot is a point-in-time view of every name bucket in a
// Cache, sufficient for all DataAggregator queries. It is built by
// locking one name bucket at a time, never the whole cache at once, so
// a Snapshot call never blocks producers on unrelated names for more
// than the time it takes to copy one bucket's rings.
type CacheSnapshot map[string]nameSnapshot

// CacheOption configures a Cache constructed with NewCache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	okCapacity    int
	errorCapacity int
}

// WithOKCapacity overrides the per-(name,latency-bucket) ring capacity
// for OK-status spans. The default is 16.
func WithOKCapacity(n int) CacheOption {
	return func(c *cacheConfig) { c.okCapacity = n }
}

// WithErrorCapacity overrides the per-(name,error-code) ring capacity
// for non-OK spans. The default is 16.
func WithErrorCapacity(n int) CacheOption {
	return func(c *cacheConfig) { c.errorCapacity = n }
}

// Cache is a name-partitioned store of running and recently-finished
// spans. It absorbs OnStart/OnEnd notifications from arbitrary producer
// goroutines with O(1) expected cost and no I/O, and offers
// per-query-consistent snapshots to a DataAggregator.
//
// The zero value is not usable; construct with NewCache.
type Cache struct {
	cfg     cacheConfig
	buckets sync.Map // string -> *nameBucket
}

// NewCache constructs an empty Cache.
func NewCache(opts ...CacheOption) *Cache {
	cfg := cacheConfig{okCapacity: defaultOKCapacity, errorCapacity: defaultErrorCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache{cfg: cfg}
}

func (c *Cache) bucketFor(name string) *nameBucket {
	if v, ok := c.buckets.Load(name); ok {
		return v.(*nameBucket)
	}
	v, _ := c.buckets.LoadOrStore(name, newNameBucket(c.cfg.okCapacity, c.cfg.errorCapacity))
	return v.(*nameBucket)
}

// InsertRunning admits span into the running set of its name's bucket.
// O(1) expected.
func (c *Cache) InsertRunning(span sdktrace.ReadOnlySpan) {
	sc := span.SpanContext()
	if !sc.IsValid() {
		return
	}
	b := c.bucketFor(span.Name())
	key := keyFor(sc)
	b.mu.Lock()
	b.running[key] = span
	b.mu.Unlock()
}

// MoveToFinished removes span from the running set (if present) and
// appends its snapshot to the ring selected by status/latency,
// evicting the oldest entry in that ring if it is already at capacity.
//
// Calling MoveToFinished without a prior InsertRunning, or calling it
// twice for the same span, is tolerated: the span simply ends up in a
// finished ring with no corresponding running entry ever removed.
func (c *Cache) MoveToFinished(span sdktrace.ReadOnlySpan) {
	b := c.bucketFor(span.Name())
	sc := span.SpanContext()
	snap := newFinishedSpanSnapshot(span)

	b.mu.Lock()
	if sc.IsValid() {
		delete(b.running, keyFor(sc))
	}
	if snap.StatusCode == codes.Ok {
		b.ok[latencyBucketFor(snap.Latency)].add(snap)
	} else {
		b.errors[errorCodeFor(snap.StatusCode)].add(snap)
	}
	b.mu.Unlock()
}

// Snapshot returns a point-in-time view of every name bucket in the
// cache. A span currently mid-MoveToFinished either still appears as
// running or already appears in its finished ring in the returned
// snapshot, never both and never neither, because MoveToFinished holds
// the bucket's lock across both the running-set removal and the ring
// insertion.
func (c *Cache) Snapshot() CacheSnapshot {
	out := make(CacheSnapshot)
	c.buckets.Range(func(k, v any) bool {
		name := k.(string)
		b := v.(*nameBucket)

		b.mu.Lock()
		running := make([]sdktrace.ReadOnlySpan, 0, len(b.running))
		for _, s := range b.running {
			running = append(running, s)
		}
		var ns nameSnapshot
		ns.Running = running
		for i := range b.ok {
			ns.OK[i] = b.ok[i].values()
		}
		for i := range b.errors {
			ns.Errors[i] = b.errors[i].values()
		}
		b.mu.Unlock()

		out[name] = ns
		return true
	})
	return out
}
