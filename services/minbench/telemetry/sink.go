// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry exports experiment results as OpenTelemetry spans and
// metrics.
package telemetry

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianMinBench/services/minbench/library"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/sweep"
)

const instrumentationName = "github.com/AleutianAI/AleutianMinBench/services/minbench/telemetry"

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrSinkClosed is returned when recording on a closed sink.
	ErrSinkClosed = errors.New("telemetry sink is closed")

	// ErrSinkInitFailed is returned when an instrument cannot be created.
	ErrSinkInitFailed = errors.New("telemetry sink initialization failed")
)

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// SinkConfig configures a Sink.
type SinkConfig struct {
	// ServiceVersion is the instrumentation version.
	ServiceVersion string

	// TracerProvider is the tracer provider to use.
	// If nil, uses the global tracer provider.
	TracerProvider trace.TracerProvider

	// MeterProvider is the meter provider to use.
	// If nil, uses the global meter provider.
	MeterProvider metric.MeterProvider
}

// -----------------------------------------------------------------------------
// Sink
// -----------------------------------------------------------------------------

// Sink records library measurements and sweep results.
//
// Description:
//
//	Each dataset size gets one span from StartExperiment. Library timings
//	and per-K averages become histogram samples keyed by method or K and
//	the dataset size. With the global no-op providers every call is cheap
//	and records nothing.
//
// Thread Safety: Safe for concurrent use.
type Sink struct {
	tracer trace.Tracer
	meter  metric.Meter

	libraryDuration metric.Int64Histogram
	sweepDuration   metric.Int64Histogram
	bestK           metric.Int64Gauge
	bestDuration    metric.Int64Gauge
	sweepFailures   metric.Int64Counter
	experiments     metric.Int64Counter

	mu     sync.RWMutex
	closed bool
}

// NewSink creates a Sink.
//
// Inputs:
//   - config: May be nil, meaning global providers.
//
// Outputs:
//   - *Sink: Never nil on success.
//   - error: ErrSinkInitFailed if an instrument cannot be created.
func NewSink(config *SinkConfig) (*Sink, error) {
	var cfg SinkConfig
	if config != nil {
		cfg = *config
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	s := &Sink{
		tracer: tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion)),
		meter:  mp.Meter(instrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion)),
	}
	if err := s.initializeMetrics(); err != nil {
		return nil, errors.Join(ErrSinkInitFailed, err)
	}
	return s, nil
}

func (s *Sink) initializeMetrics() error {
	var err error

	s.libraryDuration, err = s.meter.Int64Histogram(
		"minbench.library.duration",
		metric.WithDescription("Elapsed time of one library minimum call"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return err
	}

	s.sweepDuration, err = s.meter.Int64Histogram(
		"minbench.sweep.duration",
		metric.WithDescription("Average elapsed time of the custom engine per worker count"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return err
	}

	s.bestK, err = s.meter.Int64Gauge(
		"minbench.sweep.best_k",
		metric.WithDescription("Fastest worker count of the last sweep"),
		metric.WithUnit("{worker}"),
	)
	if err != nil {
		return err
	}

	s.bestDuration, err = s.meter.Int64Gauge(
		"minbench.sweep.best_duration",
		metric.WithDescription("Average elapsed time of the fastest worker count"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return err
	}

	s.sweepFailures, err = s.meter.Int64Counter(
		"minbench.sweep.failures",
		metric.WithDescription("Sweeps aborted by an engine error"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return err
	}

	s.experiments, err = s.meter.Int64Counter(
		"minbench.experiments",
		metric.WithDescription("Dataset sizes benchmarked"),
		metric.WithUnit("{experiment}"),
	)
	return err
}

// StartExperiment opens the span for one dataset size.
//
// Outputs:
//   - context.Context: Carries the span; pass it to the Record methods.
//   - func(error): Ends the span, marking it failed when err is non-nil.
//     Safe to call on a closed sink.
func (s *Sink) StartExperiment(ctx context.Context, runID string, size int) (context.Context, func(error)) {
	if s.isClosed() {
		return ctx, func(error) {}
	}

	ctx, span := s.tracer.Start(ctx, "minbench.experiment",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("size", size),
		),
	)
	s.experiments.Add(ctx, 1, metric.WithAttributes(attribute.Int("size", size)))

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// RecordLibrary records one histogram sample per measurement.
func (s *Sink) RecordLibrary(ctx context.Context, measurements []library.Measurement) error {
	if s.isClosed() {
		return ErrSinkClosed
	}

	span := trace.SpanFromContext(ctx)
	for _, m := range measurements {
		attrs := []attribute.KeyValue{
			attribute.String("method", m.Name),
			attribute.Int("size", m.DataSize),
		}
		s.libraryDuration.Record(ctx, m.Micros, metric.WithAttributes(attrs...))
		span.AddEvent("library.measurement", trace.WithAttributes(
			append(attrs, attribute.Int64("elapsed_us", m.Micros))...,
		))
	}
	return nil
}

// RecordSweep records the per-K averages and the winner of one sweep.
//
// Inputs:
//   - size: Dataset size the sweep ran over.
//   - result: Must not be nil.
func (s *Sink) RecordSweep(ctx context.Context, size int, result *sweep.Result) error {
	if s.isClosed() {
		return ErrSinkClosed
	}
	if result == nil {
		return errors.New("sweep result must not be nil")
	}

	sizeAttr := attribute.Int("size", size)
	for _, e := range result.Entries {
		s.sweepDuration.Record(ctx, e.AvgMicros,
			metric.WithAttributes(sizeAttr, attribute.Int("k", e.K)))
	}

	span := trace.SpanFromContext(ctx)
	if result.Best.Found {
		s.bestK.Record(ctx, int64(result.Best.K), metric.WithAttributes(sizeAttr))
		s.bestDuration.Record(ctx, result.Best.AvgMicros, metric.WithAttributes(sizeAttr))
		span.SetAttributes(
			attribute.Int("best_k", result.Best.K),
			attribute.Int64("best_us", result.Best.AvgMicros),
		)
	}

	if result.Aborted() {
		s.sweepFailures.Add(ctx, 1, metric.WithAttributes(sizeAttr, attribute.Int("k", result.FailedK)))
		span.AddEvent("sweep.aborted", trace.WithAttributes(
			attribute.Int("k", result.FailedK),
			attribute.String("error", result.Err.Error()),
		))
	}
	return nil
}

// Close marks the sink closed. Providers are shut down by Init's shutdown.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Sink) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
