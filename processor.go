// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var _ sdktrace.SpanProcessor = (*Processor)(nil)

// ProcessorOption configures a Processor constructed with NewProcessor.
type ProcessorOption func(*Processor)

// WithOnlySampledExport sets the processor's admission filter. When
// enabled (the default), spans whose SpanContext is not sampled are
// ignored by both OnStart and OnEnd, as if the processor were absent
// for that span. Mirrors Config.OnlySampledExport, so a Processor built
// without going through Config still defaults the same way.
func WithOnlySampledExport(onlySampled bool) ProcessorOption {
	return func(p *Processor) { p.onlySampledExport = onlySampled }
}

// WithLogger overrides the logger used to report swallowed internal
// failures. The default is slog.Default(); Processor never logs above
// Debug, since none of this is meant to reach an operator outside the
// debug page itself.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = logger }
}

// spanSink is the subset of *Cache that Processor depends on. Narrowing
// it to an interface keeps Processor's contract minimal and lets tests
// substitute a fault-injecting fake to exercise the recover-and-swallow
// path in OnStart/OnEnd.
type spanSink interface {
	InsertRunning(sdktrace.ReadOnlySpan)
	MoveToFinished(sdktrace.ReadOnlySpan)
}

// Processor implements go.opentelemetry.io/otel/sdk/trace.SpanProcessor,
// feeding every started and ended span into a Cache. It is the sole
// producer-facing surface of this package: it must never block the SDK
// on I/O or panic into it (spec §4.1, §7 SDKCallbackFailure).
type Processor struct {
	cache             spanSink
	onlySampledExport bool
	logger            *slog.Logger
}

// NewProcessor returns a Processor that feeds cache. onlySampledExport
// defaults to true; override with WithOnlySampledExport.
func NewProcessor(cache *Cache, opts ...ProcessorOption) *Processor {
	return newProcessor(cache, opts...)
}

func newProcessor(cache spanSink, opts ...ProcessorOption) *Processor {
	p := &Processor{
		cache:             cache,
		onlySampledExport: true,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// admits reports whether span passes the admission filter. Sampling is
// fixed on a span's SpanContext for its whole lifetime, so re-checking
// it in OnEnd yields the same decision OnStart made without needing to
// remember it per span — the simpler variant spec §4.1 allows "at the
// cost of one lookup".
func (p *Processor) admits(sc interface{ IsSampled() bool }) bool {
	return !p.onlySampledExport || sc.IsSampled()
}

// OnStart records span as running, unless the admission filter rejects
// it. Never blocks on I/O and never panics into the SDK.
func (p *Processor) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	defer p.recoverInto("OnStart", span)

	if !p.admits(span.SpanContext()) {
		return
	}
	p.cache.InsertRunning(span)
}

// OnEnd moves span from running to its classified finished ring, unless
// the admission filter rejects it.
func (p *Processor) OnEnd(span sdktrace.ReadOnlySpan) {
	defer p.recoverInto("OnEnd", span)

	if !p.admits(span.SpanContext()) {
		return
	}
	p.cache.MoveToFinished(span)
}

// Shutdown does nothing; this core never exports and has no resources
// to release.
func (p *Processor) Shutdown(context.Context) error { return nil }

// ForceFlush does nothing, for the same reason as Shutdown.
func (p *Processor) ForceFlush(context.Context) error { return nil }

// recoverInto swallows any panic raised while handling callback for
// span, logging it at Debug so it never propagates into the SDK's
// export pipeline (spec §7 SDKCallbackFailure).
func (p *Processor) recoverInto(callback string, span interface{ Name() string }) {
	if r := recover(); r != nil {
		p.logger.Debug("tracez: span processor callback failed",
			slog.String("callback", callback),
			slog.String("span_name", span.Name()),
			slog.Any("recovered", r),
		)
	}
}
