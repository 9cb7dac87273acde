// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/AleutianAI/AleutianMinBench/services/minbench/hardware"
)

// JSONRenderer writes one JSON document per experiment.
type JSONRenderer struct {
	out    io.Writer
	pretty bool
}

// NewJSONRenderer creates a JSONRenderer. With pretty unset each experiment
// is a single line.
func NewJSONRenderer(out io.Writer, pretty bool) *JSONRenderer {
	return &JSONRenderer{out: out, pretty: pretty}
}

type jsonExperiment struct {
	*Experiment
	SweepError string  `json:"sweep_error,omitempty"`
	Conclusion Summary `json:"conclusion"`
}

// Begin writes nothing; each document is self-contained.
func (r *JSONRenderer) Begin(hardware.Info) error {
	return nil
}

// Render writes exp with its Conclusion.
func (r *JSONRenderer) Render(exp *Experiment) error {
	doc := jsonExperiment{Experiment: exp, Conclusion: Conclusion(exp)}
	if exp.Sweep != nil && exp.Sweep.Err != nil {
		doc.SweepError = exp.Sweep.Err.Error()
	}

	enc := json.NewEncoder(r.out)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode experiment: %w", err)
	}
	return nil
}
