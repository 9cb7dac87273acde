// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Scheduler runs a batch of indexed tasks and blocks until all of them finish.
//
// Description:
//
//	ForkJoin launches task(0) .. task(n-1) and returns only after every
//	launched task has returned. Task i is always invoked with index i; the
//	order in which tasks run or complete is up to the implementation.
//	Launched tasks are never abandoned.
//
// Implementations must return ErrWorkerCreationFailed if they cannot start
// all n tasks, and ErrWorkerFailed if a task panics.
type Scheduler interface {
	ForkJoin(n int, task func(i int)) error
}

// GoroutineScheduler runs each task on its own goroutine.
//
// Thread Safety: Safe for concurrent use; it holds no state between calls.
type GoroutineScheduler struct {
	// MaxWorkers caps how many tasks one ForkJoin may start.
	// A request for more fails with ErrWorkerCreationFailed.
	// Default: 0 (unlimited)
	MaxWorkers int
}

// NewGoroutineScheduler creates a scheduler with the given worker cap.
// A cap of 0 or less means unlimited.
func NewGoroutineScheduler(maxWorkers int) *GoroutineScheduler {
	if maxWorkers < 0 {
		maxWorkers = 0
	}
	return &GoroutineScheduler{MaxWorkers: maxWorkers}
}

// ForkJoin starts n goroutines and waits for all of them.
func (s *GoroutineScheduler) ForkJoin(n int, task func(i int)) error {
	if s.MaxWorkers > 0 && n > s.MaxWorkers {
		return fmt.Errorf("%w: requested %d workers, limit is %d",
			ErrWorkerCreationFailed, n, s.MaxWorkers)
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error { return runTask(i, task) })
	}
	return g.Wait()
}

// SequentialScheduler runs tasks inline on the caller's goroutine in index
// order. It stands in for a real scheduler where a test needs a fixed
// execution order.
type SequentialScheduler struct{}

// ForkJoin runs task(0) .. task(n-1) one after another.
func (SequentialScheduler) ForkJoin(n int, task func(i int)) error {
	for i := 0; i < n; i++ {
		if err := runTask(i, task); err != nil {
			return err
		}
	}
	return nil
}

func runTask(i int, task func(i int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker %d: %v", ErrWorkerFailed, i, r)
		}
	}()
	task(i)
	return nil
}

var (
	_ Scheduler = (*GoroutineScheduler)(nil)
	_ Scheduler = SequentialScheduler{}
)
