// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders experiment results for people and for machines.
//
// An Experiment is everything measured for one dataset size. Renderers take
// it as-is and never recompute timings; Conclusion derives the summary lines
// both renderers share.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/AleutianAI/AleutianMinBench/pkg/ux"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/hardware"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/library"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/sweep"
)

// ErrUnknownFormat indicates an unsupported report format.
var ErrUnknownFormat = errors.New("unknown report format")

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Experiment is the measured outcome for one dataset size.
type Experiment struct {
	RunID        string                `json:"run_id"`
	DataSize     int                   `json:"data_size"`
	FirstElement int                   `json:"first_element"`
	Hardware     hardware.Info         `json:"hardware"`
	Library      []library.Measurement `json:"library"`

	// Sweep is nil when the custom engine never ran.
	Sweep *sweep.Result `json:"sweep,omitempty"`

	// Errors lists failures that cut this experiment short.
	Errors []string `json:"errors,omitempty"`
}

// AddError records a failure message.
func (e *Experiment) AddError(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err.Error())
	}
}

// Summary is the conclusion drawn from a sweep.
type Summary struct {
	Found      bool  `json:"found"`
	BestK      int   `json:"best_k"`
	BestMicros int64 `json:"best_us"`

	HardwareParallelism int `json:"hardware_parallelism"`

	// Ratio is BestK / HardwareParallelism. RatioKnown is false when the
	// parallelism reading was 0.
	Ratio      float64 `json:"ratio"`
	RatioKnown bool    `json:"ratio_known"`

	// Speedup is the K=1 average over the best average. Known only when
	// K=1 was measured and the best average is non-zero.
	Speedup      float64 `json:"speedup"`
	SpeedupKnown bool    `json:"speedup_known"`
}

// Conclusion derives the summary for exp. A nil sweep or one with no
// evaluated K yields Found=false.
func Conclusion(exp *Experiment) Summary {
	if exp == nil || exp.Sweep == nil {
		return Summary{}
	}
	res := exp.Sweep
	s := Summary{HardwareParallelism: res.HardwareParallelism}
	if !res.Best.Found {
		return s
	}

	s.Found = true
	s.BestK = res.Best.K
	s.BestMicros = res.Best.AvgMicros

	if res.HardwareParallelism > 0 {
		s.Ratio = float64(res.Best.K) / float64(res.HardwareParallelism)
		s.RatioKnown = true
	}

	if len(res.Entries) > 0 && res.Entries[0].K == 1 && res.Best.AvgMicros > 0 {
		s.Speedup = float64(res.Entries[0].AvgMicros) / float64(res.Best.AvgMicros)
		s.SpeedupKnown = true
	}
	return s
}

// Renderer writes experiments to an output.
type Renderer interface {
	// Begin writes anything that precedes the first experiment.
	Begin(info hardware.Info) error

	// Render writes one experiment.
	Render(exp *Experiment) error
}

// NewRenderer returns the renderer for format.
//
// Inputs:
//   - format: FormatConsole or FormatJSON.
//   - out: Destination writer.
//   - color: Console color mode; ignored for JSON.
func NewRenderer(format string, out io.Writer, color ux.ColorMode) (Renderer, error) {
	switch format {
	case FormatConsole, "":
		return NewConsoleRenderer(out, ux.NewTheme(out, color)), nil
	case FormatJSON:
		return NewJSONRenderer(out, true), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
