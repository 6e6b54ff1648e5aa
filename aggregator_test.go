// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"
)

func TestAggregatorSpanNamesIncludesRunningOnly(t *testing.T) {
	cache := NewCache()
	started, _ := makeSpan(t, "op", codes.Ok, nil)
	cache.InsertRunning(started)

	agg := NewDataAggregator(cache)
	assert.Equal(t, []string{"op"}, agg.SpanNames())
}

func TestAggregatorRunningSpanCountsOmitsZero(t *testing.T) {
	cache := NewCache()
	started, ended := makeSpan(t, "op", codes.Ok, nil)
	cache.InsertRunning(started)

	agg := NewDataAggregator(cache)
	counts := agg.RunningSpanCounts()
	assert.Equal(t, 1, counts["op"])

	cache.MoveToFinished(ended)
	counts = agg.RunningSpanCounts()
	_, present := counts["op"]
	assert.False(t, present)
}

func TestAggregatorRunningSpansByName(t *testing.T) {
	cache := NewCache()
	started, _ := makeSpan(t, "op", codes.Ok, nil)
	cache.InsertRunning(started)

	agg := NewDataAggregator(cache)
	spans := agg.RunningSpansByName("op")
	assert.Len(t, spans, 1)
	assert.Equal(t, "op", spans[0].Name)

	assert.Nil(t, agg.RunningSpansByName("missing"))
}

func TestAggregatorSpanLatencyCounts(t *testing.T) {
	cache := NewCache()
	_, ended := makeSpan(t, "op", codes.Ok, func(ctx context.Context) {
		time.Sleep(time.Millisecond)
	})
	cache.MoveToFinished(ended)

	agg := NewDataAggregator(cache)
	counts := agg.SpanLatencyCounts()["op"]
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 1, total)
}

func TestAggregatorSpanLatencyCountsInRange(t *testing.T) {
	cache := NewCache()
	_, ended := makeSpan(t, "op", codes.Ok, func(ctx context.Context) {
		time.Sleep(time.Millisecond)
	})
	cache.MoveToFinished(ended)

	agg := NewDataAggregator(cache)
	in := agg.SpanLatencyCountsInRange(0, time.Second)
	assert.Equal(t, 1, in["op"])

	out := agg.SpanLatencyCountsInRange(time.Hour, 2*time.Hour)
	_, present := out["op"]
	assert.False(t, present)
}

func TestAggregatorOKSpansInBucketRejectsInvalidBucket(t *testing.T) {
	cache := NewCache()
	agg := NewDataAggregator(cache)
	assert.Nil(t, agg.OKSpansInBucket("op", LatencyBucket(-1)))
	assert.Nil(t, agg.OKSpansInBucket("op", LatencyBucket(numLatencyBuckets)))
}

func TestAggregatorErrorSpanCountsAndByCode(t *testing.T) {
	cache := NewCache()
	_, ended := makeSpan(t, "op", codes.Error, nil)
	cache.MoveToFinished(ended)

	agg := NewDataAggregator(cache)
	assert.Equal(t, 1, agg.ErrorSpanCounts()["op"])
	assert.Len(t, agg.ErrorSpansByName("op"), 1)
	assert.Len(t, agg.ErrorSpansByCode("op", ErrorCodeError), 1)
	assert.Empty(t, agg.ErrorSpansByCode("op", ErrorCodeUnset))
	assert.Nil(t, agg.ErrorSpansByCode("op", ErrorCode(-1)))
	assert.Nil(t, agg.ErrorSpansByCode("op", ErrorCode(numErrorCodes)))
}

func TestAggregatorQueriesOnEmptyCacheAreTotal(t *testing.T) {
	agg := NewDataAggregator(NewCache())
	assert.Empty(t, agg.SpanNames())
	assert.Empty(t, agg.RunningSpanCounts())
	assert.Nil(t, agg.RunningSpansByName("missing"))
	assert.Empty(t, agg.SpanLatencyCounts())
	assert.Nil(t, agg.OKSpans("missing", 0, time.Hour))
	assert.Empty(t, agg.ErrorSpanCounts())
	assert.Nil(t, agg.ErrorSpansByName("missing"))
}
