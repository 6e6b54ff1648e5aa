// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import "time"

// LatencyCounts holds a count of OK-status finished spans per
// LatencyBucket, indexed by LatencyBucket ordinal.
type LatencyCounts [numLatencyBuckets]int

// DataAggregator is a pure-query facade over a Cache: every operation
// performs a bounded scan of a fresh Cache.Snapshot and returns a newly
// allocated result. No operation mutates the cache, and no operation
// fails — it is total, per spec §7.
type DataAggregator struct {
	cache *Cache
}

// NewDataAggregator returns a DataAggregator backed by cache.
func NewDataAggregator(cache *Cache) *DataAggregator {
	return &DataAggregator{cache: cache}
}

// SpanNames returns every span name the cache has observed at least
// once, whether or not it currently has running or finished spans.
func (a *DataAggregator) SpanNames() []string {
	snap := a.cache.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	return names
}

// RunningSpanCounts returns the number of currently-running spans per
// name, omitting names with zero running spans.
func (a *DataAggregator) RunningSpanCounts() map[string]int {
	snap := a.cache.Snapshot()
	out := make(map[string]int)
	for name, ns := range snap {
		if n := len(ns.Running); n > 0 {
			out[name] = n
		}
	}
	return out
}

// RunningSpansByName returns a snapshot of every span with the given
// name that was running at read time, taken at the moment of the call.
func (a *DataAggregator) RunningSpansByName(name string) []FinishedSpanSnapshot {
	snap := a.cache.Snapshot()
	ns, ok := snap[name]
	if !ok {
		return nil
	}
	out := make([]FinishedSpanSnapshot, 0, len(ns.Running))
	for _, s := range ns.Running {
		out = append(out, newFinishedSpanSnapshot(s))
	}
	return out
}

// SpanLatencyCounts returns, for every name, the count of OK finished
// spans held in each of the nine latency buckets.
func (a *DataAggregator) SpanLatencyCounts() map[string]LatencyCounts {
	snap := a.cache.Snapshot()
	out := make(map[string]LatencyCounts, len(snap))
	for name, ns := range snap {
		var counts LatencyCounts
		for i := range ns.OK {
			counts[i] = len(ns.OK[i])
		}
		out[name] = counts
	}
	return out
}

// SpanLatencyCountsInRange returns, for every name, the count of OK
// finished spans whose latency L satisfies lo <= L < hi.
func (a *DataAggregator) SpanLatencyCountsInRange(lo, hi time.Duration) map[string]int {
	snap := a.cache.Snapshot()
	out := make(map[string]int, len(snap))
	for name, ns := range snap {
		n := 0
		for _, bucket := range ns.OK {
			for _, s := range bucket {
				if s.Latency >= lo && s.Latency < hi {
					n++
				}
			}
		}
		if n > 0 {
			out[name] = n
		}
	}
	return out
}

// OKSpans returns the OK finished snapshots for name whose latency L
// satisfies lo <= L < hi, grouped by LatencyBucket in ascending order
// and oldest first within each bucket.
func (a *DataAggregator) OKSpans(name string, lo, hi time.Duration) []FinishedSpanSnapshot {
	snap := a.cache.Snapshot()
	ns, ok := snap[name]
	if !ok {
		return nil
	}
	var out []FinishedSpanSnapshot
	for _, bucket := range ns.OK {
		for _, s := range bucket {
			if s.Latency >= lo && s.Latency < hi {
				out = append(out, s)
			}
		}
	}
	return out
}

// OKSpansInBucket returns the OK finished snapshots held in a single
// LatencyBucket for name, oldest first. Returns nil if bucket is not
// one of the nine defined buckets.
func (a *DataAggregator) OKSpansInBucket(name string, bucket LatencyBucket) []FinishedSpanSnapshot {
	if !bucket.IsValid() {
		return nil
	}
	snap := a.cache.Snapshot()
	ns, ok := snap[name]
	if !ok {
		return nil
	}
	out := make([]FinishedSpanSnapshot, len(ns.OK[bucket]))
	copy(out, ns.OK[bucket])
	return out
}

// ErrorSpanCounts returns, for every name, the total count of non-OK
// finished spans across all ErrorCode rings.
func (a *DataAggregator) ErrorSpanCounts() map[string]int {
	snap := a.cache.Snapshot()
	out := make(map[string]int, len(snap))
	for name, ns := range snap {
		n := 0
		for _, ring := range ns.Errors {
			n += len(ring)
		}
		if n > 0 {
			out[name] = n
		}
	}
	return out
}

// ErrorSpansByName returns every non-OK finished snapshot for name,
// across all ErrorCode rings.
func (a *DataAggregator) ErrorSpansByName(name string) []FinishedSpanSnapshot {
	snap := a.cache.Snapshot()
	ns, ok := snap[name]
	if !ok {
		return nil
	}
	var out []FinishedSpanSnapshot
	for _, ring := range ns.Errors {
		out = append(out, ring...)
	}
	return out
}

// ErrorSpansByCode returns the non-OK finished snapshots for name held
// under a single ErrorCode's ring. Returns nil if code is not one of
// the defined error codes.
func (a *DataAggregator) ErrorSpansByCode(name string, code ErrorCode) []FinishedSpanSnapshot {
	if code < 0 || int(code) >= numErrorCodes {
		return nil
	}
	snap := a.cache.Snapshot()
	ns, ok := snap[name]
	if !ok {
		return nil
	}
	out := make([]FinishedSpanSnapshot, len(ns.Errors[code]))
	copy(out, ns.Errors[code])
	return out
}
