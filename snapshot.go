// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// FinishedSpanSnapshot is an immutable capture of a span's observable
// fields. Cache.MoveToFinished creates one per ended span, which stays
// in its ring until evicted. DataAggregator.RunningSpansByName also
// builds fresh ones for still-running spans on every call; their
// EndTime is zero.
type FinishedSpanSnapshot struct {
	Name              string
	SpanContext       trace.SpanContext
	ParentSpanID      trace.SpanID
	StartTime         time.Time
	EndTime           time.Time
	Latency           time.Duration
	StatusCode        codes.Code
	StatusDescription string
	Events            []sdktrace.Event
	Attributes        []attribute.KeyValue
	ResourceAttrs     []attribute.KeyValue
}

// newFinishedSpanSnapshot copies the fields of an ended span out of the
// SDK's live ReadOnlySpan so the cache never retains a reference into
// SDK-owned memory past the point of eviction.
func newFinishedSpanSnapshot(span sdktrace.ReadOnlySpan) FinishedSpanSnapshot {
	status := span.Status()

	var parent trace.SpanID
	if p := span.Parent(); p.HasSpanID() {
		parent = p.SpanID()
	}

	latency := span.EndTime().Sub(span.StartTime())
	if latency < 0 {
		latency = 0
	}

	events := span.Events()
	eventsCopy := make([]sdktrace.Event, len(events))
	copy(eventsCopy, events)

	attrs := span.Attributes()
	attrsCopy := make([]attribute.KeyValue, len(attrs))
	copy(attrsCopy, attrs)

	var resAttrs []attribute.KeyValue
	if res := span.Resource(); res != nil {
		resAttrs = res.Attributes()
	}

	return FinishedSpanSnapshot{
		Name:              span.Name(),
		SpanContext:       span.SpanContext(),
		ParentSpanID:      parent,
		StartTime:         span.StartTime(),
		EndTime:           span.EndTime(),
		Latency:           latency,
		StatusCode:        status.Code,
		StatusDescription: status.Description,
		Events:            eventsCopy,
		Attributes:        attrsCopy,
		ResourceAttrs:     resAttrs,
	}
}
