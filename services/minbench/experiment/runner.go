// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package experiment runs the full benchmark for each configured dataset
// size.
//
// # Per-size flow
//
//	probe hardware ─► generate dataset ─► library pass ─► K sweep ─► render
//	                                           │              │
//	                                           └── telemetry ─┘
//
// A library or engine failure is recorded on that size's Experiment and the
// run moves on to the next size. Dataset generation failure, cancellation
// and render failure end the run.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianMinBench/pkg/logging"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/config"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/dataset"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/engine"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/hardware"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/library"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/report"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/sweep"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/telemetry"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/timing"
)

// ErrDatasetGeneration wraps a dataset generation failure, which ends the
// run.
var ErrDatasetGeneration = errors.New("dataset generation failed")

// HardwareProber reads the host's parallelism.
type HardwareProber interface {
	Probe(source hardware.Source, override int) (hardware.Info, error)
}

// RunnerOption is a functional option for configuring Runner.
type RunnerOption func(*Runner)

// Runner executes the experiment over every configured dataset size.
//
// Thread Safety: Not safe for concurrent use. Run calls must not overlap;
// concurrent runs would distort each other's timings anyway.
type Runner struct {
	cfg config.MinBenchConfig

	prober   HardwareProber
	clock    timing.Clock
	rng      *rand.Rand
	computer sweep.Computer
	methods  func(workers int) []library.Method
	renderer report.Renderer
	sink     *telemetry.Sink
	logger   *logging.Logger
	newID    func() string
}

// NewRunner creates a Runner.
//
// Default configuration:
//   - prober: hardware.NewProber()
//   - clock: timing.SystemClock
//   - rng: dataset.NewSeededRand(cfg.Experiment.Seed)
//   - engine: engine.New over a GoroutineScheduler capped at Engine.MaxWorkers
//   - methods: library.DefaultMethods
//   - renderer: none
//   - sink: telemetry.NewSink over the global providers
//   - run IDs: uuid.NewString
//
// Outputs:
//   - error: config.ErrInvalidConfig or a telemetry initialization error.
func NewRunner(cfg config.MinBenchConfig, opts ...RunnerOption) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:     cfg,
		methods: library.DefaultMethods,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.prober == nil {
		r.prober = hardware.NewProber()
	}
	if r.clock == nil {
		r.clock = timing.SystemClock{}
	}
	if r.rng == nil {
		r.rng = dataset.NewSeededRand(cfg.Experiment.Seed)
	}
	if r.computer == nil {
		r.computer = engine.New(engine.NewGoroutineScheduler(cfg.Engine.MaxWorkers))
	}
	if r.sink == nil {
		sink, err := telemetry.NewSink(nil)
		if err != nil {
			return nil, err
		}
		r.sink = sink
	}
	r.logger = logging.OrDiscard(r.logger)

	return r, nil
}

// WithProber sets the hardware prober.
func WithProber(p HardwareProber) RunnerOption {
	return func(r *Runner) { r.prober = p }
}

// WithClock sets the clock used by every measurement.
func WithClock(c timing.Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

// WithRand sets the dataset random source, overriding the configured seed.
func WithRand(rng *rand.Rand) RunnerOption {
	return func(r *Runner) { r.rng = rng }
}

// WithComputer replaces the custom engine under test.
func WithComputer(c sweep.Computer) RunnerOption {
	return func(r *Runner) { r.computer = c }
}

// WithMethods replaces the library method list.
func WithMethods(fn func(workers int) []library.Method) RunnerOption {
	return func(r *Runner) { r.methods = fn }
}

// WithRenderer sets where each experiment is written as it completes.
func WithRenderer(rr report.Renderer) RunnerOption {
	return func(r *Runner) { r.renderer = rr }
}

// WithSink sets the telemetry sink.
func WithSink(s *telemetry.Sink) RunnerOption {
	return func(r *Runner) { r.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithRunIDs sets the run ID generator.
func WithRunIDs(fn func() string) RunnerOption {
	return func(r *Runner) { r.newID = fn }
}

// Run benchmarks every configured size in order.
//
// Outputs:
//   - []*report.Experiment: One per completed size, plus the partial one a
//     cancellation interrupted.
//   - error: ErrDatasetGeneration, ctx.Err(), a hardware probe error or a
//     render error. Library and engine failures are not returned; they
//     live on the Experiment.
func (r *Runner) Run(ctx context.Context) ([]*report.Experiment, error) {
	cfg := r.cfg

	gen, err := dataset.NewGenerator(r.rng, cfg.Experiment.ValueMin, cfg.Experiment.ValueMax)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetGeneration, err)
	}

	controller, err := sweep.NewController(r.computer, r.clock, sweep.Config{
		Trials: cfg.Experiment.Trials,
		Policy: cfg.Sweep,
	}, r.logger)
	if err != nil {
		return nil, err
	}

	if r.renderer != nil {
		info, err := r.probe()
		if err != nil {
			return nil, err
		}
		if err := r.renderer.Begin(info); err != nil {
			return nil, fmt.Errorf("render banner: %w", err)
		}
	}

	experiments := make([]*report.Experiment, 0, len(cfg.Experiment.Sizes))
	for _, size := range cfg.Experiment.Sizes {
		if err := ctx.Err(); err != nil {
			return experiments, err
		}

		exp, err := r.runSize(ctx, gen, controller, size)
		if exp != nil {
			experiments = append(experiments, exp)
		}
		if err != nil {
			return experiments, err
		}

		if r.renderer != nil {
			if err := r.renderer.Render(exp); err != nil {
				return experiments, fmt.Errorf("render experiment: %w", err)
			}
		}
	}

	return experiments, nil
}

func (r *Runner) probe() (hardware.Info, error) {
	info, err := r.prober.Probe(hardware.Source(r.cfg.Hardware.Source), r.cfg.Hardware.Override)
	if err != nil {
		return hardware.Info{}, fmt.Errorf("probe hardware: %w", err)
	}
	return info, nil
}

// runSize runs one experiment. A non-nil error ends the whole run; the
// returned Experiment is nil only when no dataset exists.
func (r *Runner) runSize(ctx context.Context, gen *dataset.Generator, controller *sweep.Controller, size int) (*report.Experiment, error) {
	info, err := r.probe()
	if err != nil {
		return nil, err
	}
	hw := info.LogicalCores

	data, err := gen.Generate(size)
	if err != nil {
		r.logger.Error("dataset generation failed", "size", size, "error", err.Error())
		return nil, fmt.Errorf("%w: %w", ErrDatasetGeneration, err)
	}

	exp := &report.Experiment{
		RunID:        r.newID(),
		DataSize:     size,
		FirstElement: data[0],
		Hardware:     info,
	}
	logger := r.logger.With("run_id", exp.RunID, "size", size)
	logger.Info("dataset generated", "first_element", data[0], "hardware_parallelism", hw)

	spanCtx, end := r.sink.StartExperiment(ctx, exp.RunID, size)
	var failure error
	defer func() { end(failure) }()

	// Library pass
	pass := library.NewPass(r.clock, r.methods(max(hw, 1)), logger)
	measurements, err := pass.Run(spanCtx, data)
	exp.Library = measurements
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			failure = ctxErr
			return exp, ctxErr
		}
		failure = err
		exp.AddError(err)
		logger.Error("library pass failed", "error", err.Error())
	}
	if err := r.sink.RecordLibrary(spanCtx, measurements); err != nil {
		logger.Warn("telemetry dropped library measurements", "error", err.Error())
	}

	// K sweep
	result, err := controller.Run(spanCtx, data, hw)
	exp.Sweep = result
	if err != nil {
		failure = err
		return exp, err
	}
	if result.Aborted() {
		failure = result.Err
		logger.Error("custom engine failed", "k", result.FailedK, "error", result.Err.Error())
	} else if result.Best.Found {
		logger.Info("sweep complete", "best_k", result.Best.K, "best_us", result.Best.AvgMicros)
	}
	if err := r.sink.RecordSweep(spanCtx, size, result); err != nil {
		logger.Warn("telemetry dropped sweep result", "error", err.Error())
	}

	return exp, nil
}
