// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package library times ready-made minimum routines against the full dataset.
//
// It is the baseline the custom engine is compared to: one timed run per
// method, recorded in the order the methods were given.
package library

import (
	"context"
	"fmt"

	"github.com/AleutianAI/AleutianMinBench/pkg/logging"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/engine"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/timing"
)

// Measurement is one timed run of a named method.
type Measurement struct {
	Name     string `json:"name"`
	Micros   int64  `json:"elapsed_us"`
	DataSize int    `json:"data_size"`
	Value    int    `json:"value"`
}

// Pass runs a fixed list of methods.
type Pass struct {
	clock   timing.Clock
	methods []Method
	logger  *logging.Logger
}

// NewPass creates a Pass. A nil clock means timing.SystemClock; a nil logger
// discards.
func NewPass(clock timing.Clock, methods []Method, logger *logging.Logger) *Pass {
	if clock == nil {
		clock = timing.SystemClock{}
	}
	return &Pass{clock: clock, methods: methods, logger: logging.OrDiscard(logger)}
}

// Run times every method once against data.
//
// Outputs:
//   - []Measurement: One per method, in method order.
//   - error: engine.ErrEmptyDataset for empty data, ctx.Err() if cancelled
//     between methods, or the first method error (wrapped with its name).
//     Measurements taken before an error are returned with it.
func (p *Pass) Run(ctx context.Context, data []int) ([]Measurement, error) {
	if len(data) == 0 {
		return nil, engine.ErrEmptyDataset
	}

	results := make([]Measurement, 0, len(p.methods))
	for _, m := range p.methods {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		var value int
		us, err := timing.MeasureErr(p.clock, func() error {
			v, err := m.Run(data)
			value = v
			return err
		})
		if err != nil {
			return results, fmt.Errorf("%s: %w", m.Name, err)
		}

		results = append(results, Measurement{
			Name:     m.Name,
			Micros:   us,
			DataSize: len(data),
			Value:    value,
		})
		p.logger.Debug("library method timed", "method", m.Name, "elapsed_us", us)
	}
	return results, nil
}
