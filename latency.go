// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"fmt"
	"time"
)

// LatencyBucket identifies one of the nine fixed half-open intervals
// that partition the latency axis for OK-status spans. Values are wire
// ordinals used by the zsubtype query parameter (see PageHandler);
// reordering them is a breaking change.
type LatencyBucket int

const (
	LatencyBucketZeroToTenMicros LatencyBucket = iota
	LatencyBucketTenMicrosToHundredMicros
	LatencyBucketHundredMicrosToOneMilli
	LatencyBucketOneMilliToTenMillis
	LatencyBucketTenMillisToHundredMillis
	LatencyBucketHundredMillisToOneSec
	LatencyBucketOneSecToTenSecs
	LatencyBucketTenSecsToHundredSecs
	LatencyBucketHundredSecsAndUp

	numLatencyBuckets = int(LatencyBucketHundredSecsAndUp) + 1
)

// latencyBoundaries holds the lower bound of each LatencyBucket; the
// upper bound is the next bucket's lower bound, or +Inf for the last one.
var latencyBoundaries = [numLatencyBuckets]time.Duration{
	0,
	10 * time.Microsecond,
	100 * time.Microsecond,
	time.Millisecond,
	10 * time.Millisecond,
	100 * time.Millisecond,
	time.Second,
	10 * time.Second,
	100 * time.Second,
}

// String returns a human-readable representation of the bucket's range,
// using time.Duration formatting, e.g. "[10µs,100µs)" or "[1m40s,+Inf)".
func (b LatencyBucket) String() string {
	if b < 0 || int(b) >= numLatencyBuckets {
		return fmt.Sprintf("LatencyBucket(%d)", int(b))
	}
	lo := latencyBoundaries[b]
	if int(b) == numLatencyBuckets-1 {
		return fmt.Sprintf("[%v,+Inf)", lo)
	}
	return fmt.Sprintf("[%v,%v)", lo, latencyBoundaries[b+1])
}

// IsValid reports whether b is one of the nine defined buckets.
func (b LatencyBucket) IsValid() bool {
	return b >= 0 && int(b) < numLatencyBuckets
}

// latencyBucketFor classifies a latency into the bucket whose half-open
// interval [lo, hi) contains it. A value exactly equal to a boundary
// belongs to the higher bucket, per spec. Negative latencies (clock
// skew) are treated as zero.
func latencyBucketFor(latency time.Duration) LatencyBucket {
	if latency < 0 {
		latency = 0
	}
	bucket := LatencyBucketZeroToTenMicros
	for i := 1; i < numLatencyBuckets; i++ {
		if latency < latencyBoundaries[i] {
			break
		}
		bucket = LatencyBucket(i)
	}
	return bucket
}
