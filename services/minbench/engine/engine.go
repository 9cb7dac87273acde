// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine computes the minimum of an integer slice with K concurrent
// workers.
//
// # Overview
//
// A call to Engine.Compute is a fork-join barrier:
//
//	data ──► partition.Split(len, K) ──► K chunks
//	                                        │
//	            ┌───────────┬───────────────┼───────────────┐
//	            ▼           ▼               ▼               ▼
//	        worker 0    worker 1    ...  worker K-1     (Scheduler)
//	            │           │               │
//	            ▼           ▼               ▼
//	        partial[0]  partial[1]  ...  partial[K-1]
//	            └───────────┴──────┬────────┘
//	                               ▼
//	                         min(partials)
//
// Worker i scans chunk i and writes partial[i]; no slot is shared, so no
// locking is needed. The data slice is only read.
//
// # Errors
//
//   - ErrInvalidWorkerCount: K <= 0.
//   - ErrEmptyDataset: the slice is empty. Compute also returns 0, the
//     sentinel value, so callers that ignore the error still get a number.
//   - ErrWorkerCreationFailed: the scheduler could not start K workers.
//   - ErrWorkerFailed: a worker panicked.
//
// # Thread Safety
//
// Engine is safe for concurrent use if its Scheduler is.
package engine

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianMinBench/services/minbench/partition"
)

var (
	// ErrInvalidWorkerCount indicates K <= 0. It is the same error value as
	// partition.ErrInvalidWorkerCount.
	ErrInvalidWorkerCount = partition.ErrInvalidWorkerCount

	// ErrEmptyDataset indicates there is no minimum to compute.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrWorkerCreationFailed indicates the scheduler could not start every
	// requested worker.
	ErrWorkerCreationFailed = errors.New("worker creation failed")

	// ErrWorkerFailed indicates a worker did not complete normally.
	ErrWorkerFailed = errors.New("worker failed")
)

// Engine is the parallel minimum engine.
type Engine struct {
	scheduler Scheduler
}

// New creates an Engine that dispatches workers through scheduler.
// A nil scheduler means an unlimited GoroutineScheduler.
func New(scheduler Scheduler) *Engine {
	if scheduler == nil {
		scheduler = NewGoroutineScheduler(0)
	}
	return &Engine{scheduler: scheduler}
}

// Compute returns the minimum element of data using k workers.
//
// Description:
//
//	The effective worker count is min(k, len(data)). Compute blocks until
//	every worker has finished and then reduces the partial minima.
//
// Inputs:
//   - data: The sequence to scan. Not modified.
//   - k: Requested worker count. Must be >= 1.
//
// Outputs:
//   - int: The minimum element; 0 if data is empty.
//   - error: ErrInvalidWorkerCount, ErrEmptyDataset, ErrWorkerCreationFailed
//     or ErrWorkerFailed.
//
// Example:
//
//	m, err := engine.New(nil).Compute([]int{5, 3, 8, 1, 9, 2}, 2)
//	// m == 1
func (e *Engine) Compute(data []int, k int) (int, error) {
	partials, err := e.ComputePartials(data, k)
	if err != nil {
		return 0, err
	}
	return reduceMin(partials), nil
}

// ComputePartials runs the fork half of Compute and returns the minimum of
// each chunk, indexed by chunk.
func (e *Engine) ComputePartials(data []int, k int) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidWorkerCount, k)
	}
	if len(data) == 0 {
		return nil, ErrEmptyDataset
	}

	workers := min(k, len(data))
	chunks, err := partition.Split(len(data), workers)
	if err != nil {
		return nil, err
	}

	partials := make([]int, workers)
	err = e.scheduler.ForkJoin(workers, func(i int) {
		c := chunks[i]
		partials[i] = scanMin(data[c.Start:c.End])
	})
	if err != nil {
		return nil, err
	}
	return partials, nil
}

// SequentialMin returns the minimum of data with a single linear scan.
// The bool is false when data is empty.
func SequentialMin(data []int) (int, bool) {
	if len(data) == 0 {
		return 0, false
	}
	return scanMin(data), true
}

// scanMin requires len(s) > 0.
func scanMin(s []int) int {
	m := s[0]
	for _, v := range s[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func reduceMin(partials []int) int {
	m := partials[0]
	for _, p := range partials[1:] {
		m = min(m, p)
	}
	return m
}
