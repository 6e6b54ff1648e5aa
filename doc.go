// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package tracez implements an in-process trace-diagnostic subsystem
// ("TraceZ") for inspecting recent and currently-executing spans produced
// by a host process, without shipping the data to an external backend.
//
// A Processor observes a go.opentelemetry.io/otel/sdk/trace.TracerProvider's
// span lifecycle (OnStart/OnEnd) and feeds a Cache that keeps the set of
// running spans and bounded ring buffers of finished spans, bucketed by
// name, latency, and status. A PageHandler renders that cache, through a
// DataAggregator, as an HTML debug page on request.
package tracez
