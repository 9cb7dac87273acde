// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sweep

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianMinBench/pkg/logging"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/engine"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedEngine advances a ManualClock by a per-K duration on every call,
// so each trial of K "takes" exactly costs[K] (or costs[K][trial]).
type scriptedEngine struct {
	clock  *timing.ManualClock
	costs  map[int][]time.Duration
	calls  map[int]int
	failAt int
}

func newScriptedEngine(clock *timing.ManualClock) *scriptedEngine {
	return &scriptedEngine{clock: clock, costs: map[int][]time.Duration{}, calls: map[int]int{}}
}

func (s *scriptedEngine) cost(k int, per ...time.Duration) *scriptedEngine {
	s.costs[k] = per
	return s
}

func (s *scriptedEngine) Compute(data []int, k int) (int, error) {
	if k == s.failAt {
		return 0, fmt.Errorf("%w: simulated", engine.ErrWorkerCreationFailed)
	}
	trial := s.calls[k]
	s.calls[k]++
	per := s.costs[k]
	if len(per) > 0 {
		s.clock.Advance(per[min(trial, len(per)-1)])
	}
	return 0, nil
}

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestController(t *testing.T, e Computer, clock timing.Clock, trials int) *Controller {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Trials = trials
	c, err := NewController(e, clock, cfg, nil)
	require.NoError(t, err)
	return c
}

func TestRun_AveragesTrialsWithIntegerDivision(t *testing.T) {
	clock := timing.NewManualClock(epoch, 0)
	eng := newScriptedEngine(clock).
		cost(1, 100*time.Microsecond, 100*time.Microsecond, 101*time.Microsecond).
		cost(2, 50*time.Microsecond)
	c := newTestController(t, eng, clock, 3)

	res, err := c.Run(context.Background(), make([]int, 100), 0)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Candidates)
	assert.Equal(t, []Entry{{K: 1, AvgMicros: 100}, {K: 2, AvgMicros: 50}}, res.Entries)
	assert.Equal(t, 3, eng.calls[1])
	assert.Equal(t, 3, eng.calls[2])
	assert.Equal(t, BestK{K: 2, AvgMicros: 50, Found: true}, res.Best)
	assert.False(t, res.Aborted())
}

func TestRun_EntriesAscendByK(t *testing.T) {
	clock := timing.NewManualClock(epoch, time.Microsecond)
	c := newTestController(t, newScriptedEngine(clock), clock, 1)

	res, err := c.Run(context.Background(), make([]int, 1000), 6)
	require.NoError(t, err)

	var ks []int
	for _, e := range res.Entries {
		ks = append(ks, e.K)
	}
	assert.Equal(t, []int{1, 2, 4, 6, 8, 16}, ks)
}

func TestRun_BestKFirstWinsOnTies(t *testing.T) {
	clock := timing.NewManualClock(epoch, 0)
	eng := newScriptedEngine(clock).
		cost(1, 90*time.Microsecond).
		cost(2, 40*time.Microsecond).
		cost(4, 40*time.Microsecond).
		cost(8, 45*time.Microsecond)
	c := newTestController(t, eng, clock, 1)

	res, err := c.Run(context.Background(), make([]int, 64), 2)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4, 8}, res.Candidates)
	assert.Equal(t, 2, res.Best.K, "K=4 ties K=2 and must not replace it")
	assert.Equal(t, int64(40), res.Best.AvgMicros)
}

func TestRun_ClampsKToDatasetSize(t *testing.T) {
	clock := timing.NewManualClock(epoch, time.Microsecond)
	eng := newScriptedEngine(clock)
	c := newTestController(t, eng, clock, 2)

	// hw=8 plans [1 2 4 8 16 32]; with 5 elements 8, 16 and 32 all collapse to 5.
	res, err := c.Run(context.Background(), make([]int, 5), 8)

	require.NoError(t, err)
	var ks []int
	for _, e := range res.Entries {
		ks = append(ks, e.K)
	}
	assert.Equal(t, []int{1, 2, 4, 5}, ks)
	assert.Equal(t, 2, eng.calls[5], "clamped K runs its trials only once")
}

func TestRun_AbortsOnEngineFailure(t *testing.T) {
	clock := timing.NewManualClock(epoch, 0)
	eng := newScriptedEngine(clock).
		cost(1, 30*time.Microsecond).
		cost(2, 20*time.Microsecond)
	eng.failAt = 4
	exporter := logging.NewBufferedExporter()
	logger := logging.New(logging.Config{Quiet: true, Exporter: exporter})
	c, err := NewController(eng, clock, DefaultConfig(), logger)
	require.NoError(t, err)

	res, err := c.Run(context.Background(), make([]int, 100), 8)

	require.NoError(t, err, "an engine failure is reported on the result, not returned")
	require.True(t, res.Aborted())
	assert.ErrorIs(t, res.Err, engine.ErrWorkerCreationFailed)
	assert.Equal(t, 4, res.FailedK)
	assert.Equal(t, []Entry{{1, 30}, {2, 20}}, res.Entries)
	assert.Equal(t, 2, res.Best.K)
	assert.Contains(t, exporter.Messages(logging.LevelWarn), "sweep aborted")
}

func TestRun_ContextCancelled(t *testing.T) {
	clock := timing.NewManualClock(epoch, time.Microsecond)
	c := newTestController(t, newScriptedEngine(clock), clock, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := c.Run(ctx, make([]int, 10), 4)

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Empty(t, res.Entries)
}

func TestRun_WithRealEngine(t *testing.T) {
	data := make([]int, 10_000)
	for i := range data {
		data[i] = (i*7919)%10_007 - 5000
	}
	c, err := NewController(engine.New(nil), nil, Config{Trials: 2, Policy: DefaultPolicy()}, nil)
	require.NoError(t, err)

	res, err := c.Run(context.Background(), data, 4)

	require.NoError(t, err)
	assert.False(t, res.Aborted())
	assert.Equal(t, []int{1, 2, 4, 8, 16}, res.Candidates)
	assert.Len(t, res.Entries, 5)
	assert.True(t, res.Best.Found)
	for _, e := range res.Entries {
		assert.GreaterOrEqual(t, e.AvgMicros, res.Best.AvgMicros)
	}
}

func TestRun_WorkerCapAbortsSweep(t *testing.T) {
	eng := engine.New(engine.NewGoroutineScheduler(4))
	c, err := NewController(eng, nil, Config{Trials: 1, Policy: DefaultPolicy()}, nil)
	require.NoError(t, err)

	res, err := c.Run(context.Background(), make([]int, 1000), 2)

	require.NoError(t, err)
	assert.Equal(t, 8, res.FailedK)
	assert.ErrorIs(t, res.Err, engine.ErrWorkerCreationFailed)
	assert.Len(t, res.Entries, 3)
}

func TestBestK_Observe(t *testing.T) {
	// Averages observed in K order; the record must equal the first K whose
	// average is <= every earlier one and strictly below the current best.
	tests := []struct {
		name   string
		avgs   []int64
		wantK  int
		wantUs int64
	}{
		{"monotonic improvement", []int64{100, 80, 60, 40}, 8, 40},
		{"improves then worsens", []int64{100, 50, 70, 90}, 2, 50},
		{"ties keep first", []int64{60, 60, 60, 60}, 1, 60},
		{"late win", []int64{100, 120, 130, 99}, 8, 99},
		{"zero time wins", []int64{5, 0, 0, 3}, 2, 0},
	}

	ks := []int{1, 2, 4, 8}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var best BestK
			require.False(t, best.Found)
			for i, avg := range tt.avgs {
				best.Observe(ks[i], avg)
			}
			assert.Equal(t, BestK{K: tt.wantK, AvgMicros: tt.wantUs, Found: true}, best)
		})
	}
}

func TestNewController_Validation(t *testing.T) {
	clock := timing.SystemClock{}

	_, err := NewController(nil, clock, DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewController(engine.New(nil), clock, Config{Trials: 0, Policy: DefaultPolicy()}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewController(engine.New(nil), clock, Config{Trials: 3, Policy: Policy{Multiplier: 4, Floor: 8, Ceiling: 4}}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
