// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package timing measures the wall-clock cost of a unit of work.
//
// The clock is passed in explicitly rather than read from a process-wide
// source, so tests can drive measurements with a ManualClock and get exact,
// repeatable microsecond values.
//
// # Thread Safety
//
// SystemClock is safe for concurrent use. ManualClock is safe for concurrent
// use; readings are serialized by an internal mutex.
package timing

import (
	"sync"
	"time"
)

// Clock is a source of wall-clock readings.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the operating system's monotonic clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a deterministic Clock for tests.
//
// Description:
//
//	Every call to Now returns the current reading and then advances it by
//	Step. With Step set to 250µs, Measure over any work returns exactly 250,
//	because Measure takes two readings. Advance moves the clock explicitly,
//	which lets a unit of work simulate its own duration.
type ManualClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewManualClock creates a ManualClock starting at start that advances by
// step on every reading.
func NewManualClock(start time.Time, step time.Duration) *ManualClock {
	return &ManualClock{now: start, step: step}
}

// Now returns the current reading and advances the clock by its step.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Advance moves the clock forward by d without taking a reading.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Measure runs work synchronously and returns the elapsed wall-clock time in
// microseconds.
//
// Inputs:
//   - clock: Clock to read. Must not be nil.
//   - work: The unit of work. Runs to completion before Measure returns.
//
// Outputs:
//   - int64: Elapsed microseconds, truncated.
//
// Example:
//
//	us := timing.Measure(timing.SystemClock{}, func() { _ = slices.Min(data) })
func Measure(clock Clock, work func()) int64 {
	start := clock.Now()
	work()
	return clock.Now().Sub(start).Microseconds()
}

// MeasureErr is Measure for work that can fail. The work's error is returned
// unchanged alongside the elapsed time, which is measured either way.
func MeasureErr(clock Clock, work func() error) (int64, error) {
	var err error
	us := Measure(clock, func() {
		err = work()
	})
	return us, err
}
