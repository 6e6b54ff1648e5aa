// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Command tracezdemo starts an HTTP server exposing the TraceZ debug
// page at /tracez, wired to a real go.opentelemetry.io/otel/sdk/trace
// TracerProvider, and runs a synthetic workload so the page has
// something to show immediately.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/DataDog/tracez"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := tracez.LoadConfig(os.Getenv)

	cache := tracez.NewCache()
	processor := tracez.NewProcessor(cache, cfg.ProcessorOptions()...)
	aggregator := tracez.NewDataAggregator(cache)
	handler := tracez.NewPageHandler(aggregator)

	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(processor))
	otel.SetTracerProvider(provider)

	go generateSyntheticLoad(ctx, provider.Tracer("tracezdemo"))

	router := mux.NewRouter()
	router.Handle(handler.URLPath(), handler)

	server := &http.Server{Addr: *addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("tracezdemo: graceful shutdown failed", "error", err)
		}
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Error("tracezdemo: tracer provider shutdown failed", "error", err)
		}
	}()

	log.Printf("tracez demo listening on %s%s", *addr, handler.URLPath())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("tracezdemo: server stopped", "error", err)
	}
}

// operationNames are the span names the synthetic workload cycles
// through, so the summary table has more than one row to show.
var operationNames = []string{"GET /users", "GET /orders", "checkout", "render-page"}

// generateSyntheticLoad starts and ends spans on a fixed tick so the
// debug page has running, OK, and error samples to show on first run.
func generateSyntheticLoad(ctx context.Context, tracer trace.Tracer) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			name := operationNames[rand.Intn(len(operationNames))]
			_, span := tracer.Start(ctx, name)
			span.AddEvent("work started")
			time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
			if rand.Intn(10) == 0 {
				span.SetStatus(codes.Error, "simulated failure")
			} else {
				span.SetStatus(codes.Ok, "")
			}
			span.End()
		}
	}
}
