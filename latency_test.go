// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatencyBucketFor(t *testing.T) {
	cases := []struct {
		latency time.Duration
		want    LatencyBucket
	}{
		{0, LatencyBucketZeroToTenMicros},
		{500 * time.Nanosecond, LatencyBucketZeroToTenMicros},
		{10 * time.Microsecond, LatencyBucketTenMicrosToHundredMicros}, // boundary belongs to higher bucket
		{99 * time.Microsecond, LatencyBucketTenMicrosToHundredMicros},
		{100 * time.Microsecond, LatencyBucketHundredMicrosToOneMilli},
		{999 * time.Microsecond, LatencyBucketHundredMicrosToOneMilli},
		{time.Millisecond, LatencyBucketOneMilliToTenMillis},
		{10 * time.Millisecond, LatencyBucketTenMillisToHundredMillis},
		{100 * time.Millisecond, LatencyBucketHundredMillisToOneSec},
		{time.Second, LatencyBucketOneSecToTenSecs},
		{10 * time.Second, LatencyBucketTenSecsToHundredSecs},
		{100 * time.Second, LatencyBucketHundredSecsAndUp},
		{1000 * time.Second, LatencyBucketHundredSecsAndUp},
		{-5 * time.Second, LatencyBucketZeroToTenMicros}, // clock skew treated as zero
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, latencyBucketFor(tc.latency), "latency=%v", tc.latency)
	}
}

func TestLatencyBucketForWithinBounds(t *testing.T) {
	// Property: the chosen bucket's [lo, hi) contains the latency.
	latencies := []time.Duration{
		0, 1, 9999, 10_000, 99_999, 100_000,
		999_999, 1_000_000, 9_999_999, 10_000_000,
		99_999_999, 100_000_000, 999_999_999, 1_000_000_000,
		9_999_999_999, 10_000_000_000, 99_999_999_999, 100_000_000_000,
		500_000_000_000,
	}
	for _, ns := range latencies {
		l := time.Duration(ns)
		b := latencyBucketFor(l)
		lo := latencyBoundaries[b]
		assert.GreaterOrEqual(t, l, lo)
		if int(b) < numLatencyBuckets-1 {
			hi := latencyBoundaries[b+1]
			assert.Less(t, l, hi)
		}
	}
}

func TestLatencyBucketString(t *testing.T) {
	assert.Equal(t, "[0s,10µs)", LatencyBucketZeroToTenMicros.String())
	assert.Equal(t, "[1m40s,+Inf)", LatencyBucketHundredSecsAndUp.String())
	assert.Contains(t, LatencyBucket(99).String(), "LatencyBucket(99)")
}

func TestLatencyBucketIsValid(t *testing.T) {
	assert.True(t, LatencyBucketZeroToTenMicros.IsValid())
	assert.True(t, LatencyBucketHundredSecsAndUp.IsValid())
	assert.False(t, LatencyBucket(-1).IsValid())
	assert.False(t, LatencyBucket(numLatencyBuckets).IsValid())
}
