// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sweep times the parallel minimum engine across worker counts and
// finds the fastest one.
//
// # Overview
//
//	for K in Policy.Candidates(hw):          (ascending, strictly sequential)
//	    total = 0
//	    repeat Trials times:
//	        total += timing.Measure(Compute(data, K))
//	    avg = total / Trials                 (integer division)
//	    entries = append(entries, {K, avg})
//	    best.Observe(K, avg)                 (strict improvement only)
//
// Only one Compute call is in flight at a time, so total concurrency is
// bounded by the current K.
//
// An engine error on some K aborts the sweep there. Entries gathered before
// the failure are kept and the Result carries the error, so the caller can
// still report what was measured.
package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianMinBench/pkg/logging"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/timing"
)

// ErrInvalidConfig indicates an invalid sweep configuration.
var ErrInvalidConfig = errors.New("invalid sweep configuration")

// DefaultTrials is the number of timed Compute calls averaged per K.
const DefaultTrials = 3

// Computer computes the minimum of data with k workers.
type Computer interface {
	Compute(data []int, k int) (int, error)
}

// Entry is the averaged elapsed time for one worker count.
type Entry struct {
	K         int   `json:"k"`
	AvgMicros int64 `json:"avg_us"`
}

// BestK tracks the fastest worker count seen so far.
//
// The zero value means no winner yet.
type BestK struct {
	K         int   `json:"k"`
	AvgMicros int64 `json:"avg_us"`
	Found     bool  `json:"found"`
}

// Observe offers a new average. It replaces the record only when there is no
// winner yet or avg is strictly smaller, so ties keep the earliest K.
// Returns true if the record changed.
func (b *BestK) Observe(k int, avg int64) bool {
	if b.Found && avg >= b.AvgMicros {
		return false
	}
	b.K = k
	b.AvgMicros = avg
	b.Found = true
	return true
}

// Result is the outcome of one sweep.
type Result struct {
	// HardwareParallelism is the value the candidate set was built from.
	HardwareParallelism int `json:"hardware_parallelism"`

	// Candidates is the K set that was planned.
	Candidates []int `json:"candidates"`

	// Trials is the number of timed runs per K.
	Trials int `json:"trials"`

	// Entries holds one average per evaluated K in increasing K order.
	Entries []Entry `json:"entries"`

	// Best is the fastest K among Entries.
	Best BestK `json:"best"`

	// FailedK is the K the sweep aborted on; 0 if it completed.
	FailedK int `json:"failed_k,omitempty"`

	// Err is the engine error that aborted the sweep, if any.
	Err error `json:"-"`
}

// Aborted reports whether the sweep stopped before evaluating every
// candidate.
func (r *Result) Aborted() bool {
	return r.Err != nil
}

// Config configures a Controller.
type Config struct {
	// Trials is the number of timed runs averaged per K.
	// Default: 3
	Trials int

	// Policy generates the candidate K set.
	Policy Policy
}

// DefaultConfig returns {Trials: 3, Policy: DefaultPolicy()}.
func DefaultConfig() Config {
	return Config{Trials: DefaultTrials, Policy: DefaultPolicy()}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive", ErrInvalidConfig)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Controller drives timed trials of a Computer over a set of K values.
//
// Thread Safety: Run may be called concurrently only if the Computer allows
// it; the timings would then interfere with each other.
type Controller struct {
	engine Computer
	clock  timing.Clock
	config Config
	logger *logging.Logger
}

// NewController creates a Controller.
//
// Inputs:
//   - engine: The engine under test. Must not be nil.
//   - clock: Clock for measurements; nil means timing.SystemClock.
//   - config: Trial count and K policy. Validated here.
//   - logger: nil means discard.
//
// Outputs:
//   - *Controller: Ready to Run.
//   - error: ErrInvalidConfig if config is invalid or engine is nil.
func NewController(engine Computer, clock timing.Clock, config Config, logger *logging.Logger) (*Controller, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: engine is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = timing.SystemClock{}
	}
	return &Controller{
		engine: engine,
		clock:  clock,
		config: config,
		logger: logging.OrDiscard(logger),
	}, nil
}

// Run sweeps the candidate K values for hardware parallelism hw over data.
//
// Description:
//
//	Candidates above len(data) are clamped to len(data); a clamped value
//	already evaluated is skipped so every Entry has a unique K. Context
//	cancellation is checked before each trial, never during one.
//
// Outputs:
//   - *Result: Always non-nil. Aborted() is true if the engine failed.
//   - error: ctx.Err() if the context was cancelled; nil otherwise.
func (c *Controller) Run(ctx context.Context, data []int, hw int) (*Result, error) {
	candidates := c.config.Policy.Candidates(hw)
	result := &Result{
		HardwareParallelism: hw,
		Candidates:          candidates,
		Trials:              c.config.Trials,
		Entries:             make([]Entry, 0, len(candidates)),
	}

	lastK := 0
	for _, k := range candidates {
		if len(data) > 0 && k > len(data) {
			k = len(data)
		}
		if k == lastK {
			continue
		}
		lastK = k

		avg, err := c.averageTrials(ctx, data, k)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.FailedK = k
			result.Err = err
			c.logger.Warn("sweep aborted", "k", k, "error", err.Error())
			return result, nil
		}

		result.Entries = append(result.Entries, Entry{K: k, AvgMicros: avg})
		if result.Best.Observe(k, avg) {
			c.logger.Debug("new best k", "k", k, "avg_us", avg)
		}
		c.logger.Debug("k evaluated", "k", k, "avg_us", avg, "trials", c.config.Trials)
	}

	return result, nil
}

func (c *Controller) averageTrials(ctx context.Context, data []int, k int) (int64, error) {
	var total int64
	for i := 0; i < c.config.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		us, err := timing.MeasureErr(c.clock, func() error {
			_, err := c.engine.Compute(data, k)
			return err
		})
		if err != nil {
			return 0, err
		}
		total += us
	}
	return total / int64(c.config.Trials), nil
}
