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
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianMinBench/pkg/ux"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/hardware"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/library"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/sweep"
)

func createTestExperiment() *Experiment {
	return &Experiment{
		RunID:        "7d0e5bb4-4c55-4d8e-9d36-7a8e0cba31a2",
		DataSize:     10_000_000,
		FirstElement: 482113,
		Hardware:     hardware.Info{LogicalCores: 8, Source: hardware.SourceRuntime},
		Library: []library.Measurement{
			{Name: library.MethodDefault, Micros: 5120, DataSize: 10_000_000, Value: 1},
			{Name: library.MethodSequential, Micros: 5300, DataSize: 10_000_000, Value: 1},
			{Name: library.MethodParallel, Micros: 1400, DataSize: 10_000_000, Value: 1},
			{Name: library.MethodParallelVectorized, Micros: 1100, DataSize: 10_000_000, Value: 1},
		},
		Sweep: &sweep.Result{
			HardwareParallelism: 8,
			Candidates:          []int{1, 2, 4, 8, 16, 32},
			Trials:              3,
			Entries: []sweep.Entry{
				{K: 1, AvgMicros: 5000},
				{K: 2, AvgMicros: 2600},
				{K: 4, AvgMicros: 1400},
				{K: 8, AvgMicros: 900},
				{K: 16, AvgMicros: 1000},
				{K: 32, AvgMicros: 1250},
			},
			Best: sweep.BestK{K: 8, AvgMicros: 900, Found: true},
		},
	}
}

// =============================================================================
// Conclusion Tests
// =============================================================================

func TestConclusion(t *testing.T) {
	s := Conclusion(createTestExperiment())

	if !s.Found || s.BestK != 8 || s.BestMicros != 900 {
		t.Errorf("best = (%v, %d, %d), want (true, 8, 900)", s.Found, s.BestK, s.BestMicros)
	}
	if !s.RatioKnown || s.Ratio != 1.0 {
		t.Errorf("ratio = (%v, %v), want (true, 1.0)", s.RatioKnown, s.Ratio)
	}
	if !s.SpeedupKnown || math.Abs(s.Speedup-5000.0/900.0) > 1e-9 {
		t.Errorf("speedup = (%v, %v), want 5.555...", s.SpeedupKnown, s.Speedup)
	}
}

func TestConclusion_ZeroParallelism(t *testing.T) {
	exp := createTestExperiment()
	exp.Sweep.HardwareParallelism = 0

	s := Conclusion(exp)
	if !s.Found {
		t.Fatal("best K should still be found")
	}
	if s.RatioKnown {
		t.Error("ratio must be unknown when parallelism is 0")
	}
}

func TestConclusion_NoSweep(t *testing.T) {
	exp := createTestExperiment()
	exp.Sweep = nil

	if s := Conclusion(exp); s.Found {
		t.Error("no sweep must not produce a best K")
	}
	if s := Conclusion(nil); s.Found {
		t.Error("nil experiment must not produce a best K")
	}
}

func TestConclusion_NoK1Entry(t *testing.T) {
	exp := createTestExperiment()
	exp.Sweep.Entries = exp.Sweep.Entries[1:]

	if s := Conclusion(exp); s.SpeedupKnown {
		t.Error("speedup needs a K=1 measurement")
	}
}

// =============================================================================
// ConsoleRenderer Tests
// =============================================================================

func TestConsoleRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewConsoleRenderer(&buf, nil)

	if err := renderer.Render(createTestExperiment()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"EXPERIMENT REPORT (N = 10000000)",
		"first element: 482113",
		library.MethodDefault,
		library.MethodParallelVectorized,
		"5120",
		"Average time (µs)",
		"hardware parallelism: 8",
		"K = 8",
		"sweep complete: 6 K values",
		"→ best speed at",
		"900 µs",
		"best K / hardware parallelism (8): 1.000",
		"speedup over K = 1: 5.56x",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q\n%s", want, output)
		}
	}

	if strings.Contains(output, "\x1b[") {
		t.Error("nil theme output must be plain text")
	}
}

func TestConsoleRenderer_LibraryOrderPreserved(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsoleRenderer(&buf, nil).Render(createTestExperiment()); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	prev := -1
	for _, name := range []string{
		library.MethodDefault, library.MethodSequential,
		library.MethodParallel, library.MethodParallelVectorized,
	} {
		idx := strings.Index(output, name)
		if idx <= prev {
			t.Errorf("%q out of order", name)
		}
		prev = idx
	}
}

func TestConsoleRenderer_RatioNotAvailable(t *testing.T) {
	exp := createTestExperiment()
	exp.Sweep.HardwareParallelism = 0

	var buf bytes.Buffer
	if err := NewConsoleRenderer(&buf, nil).Render(exp); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "best K / hardware parallelism (0): n/a") {
		t.Errorf("expected n/a ratio:\n%s", buf.String())
	}
}

func TestConsoleRenderer_AbortedSweep(t *testing.T) {
	exp := createTestExperiment()
	exp.Sweep.Entries = exp.Sweep.Entries[:2]
	exp.Sweep.Best = sweep.BestK{K: 2, AvgMicros: 2600, Found: true}
	exp.Sweep.FailedK = 4
	exp.Sweep.Err = errors.New("worker creation failed")

	var buf bytes.Buffer
	if err := NewConsoleRenderer(&buf, nil).Render(exp); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, "sweep aborted at K = 4: worker creation failed") {
		t.Errorf("Output should report the abort:\n%s", output)
	}
	if !strings.Contains(output, "K = 2") {
		t.Error("Output should still conclude from the partial sweep")
	}
	if strings.Contains(output, "sweep complete") {
		t.Error("an aborted sweep must not be reported as complete")
	}
}

func TestConsoleRenderer_NoSweepAndErrors(t *testing.T) {
	exp := createTestExperiment()
	exp.Sweep = nil
	exp.AddError(errors.New("library method failed"))
	exp.AddError(nil)

	var buf bytes.Buffer
	if err := NewConsoleRenderer(&buf, nil).Render(exp); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, "custom engine did not run") {
		t.Error("Output should note the missing sweep")
	}
	if !strings.Contains(output, "library method failed") {
		t.Error("Output should list experiment errors")
	}
	if len(exp.Errors) != 1 {
		t.Errorf("AddError(nil) should be ignored, got %d errors", len(exp.Errors))
	}
}

func TestConsoleRenderer_Begin(t *testing.T) {
	var buf bytes.Buffer
	err := NewConsoleRenderer(&buf, nil).Begin(hardware.Info{
		LogicalCores: 12, Source: hardware.SourceCPUID, Brand: "Test CPU",
	})
	if err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	for _, want := range []string{"MINIMUM SEARCH EFFICIENCY BENCHMARK", "12 logical cores (cpuid)", "Test CPU"} {
		if !strings.Contains(output, want) {
			t.Errorf("Banner should contain %q\n%s", want, output)
		}
	}
}

func TestConsoleRenderer_ColorAlways(t *testing.T) {
	var buf bytes.Buffer
	renderer := NewConsoleRenderer(&buf, ux.NewTheme(&buf, ux.ColorAlways))
	if err := renderer.Render(createTestExperiment()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("forced color should emit escape codes")
	}
}

// =============================================================================
// JSONRenderer Tests
// =============================================================================

func TestJSONRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderer(&buf, false).Render(createTestExperiment()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if decoded["run_id"] != "7d0e5bb4-4c55-4d8e-9d36-7a8e0cba31a2" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
	if decoded["data_size"] != float64(10_000_000) {
		t.Errorf("data_size = %v", decoded["data_size"])
	}

	lib, ok := decoded["library"].([]any)
	if !ok || len(lib) != 4 {
		t.Fatalf("library = %v, want 4 measurements", decoded["library"])
	}

	conclusion, ok := decoded["conclusion"].(map[string]any)
	if !ok {
		t.Fatal("missing conclusion")
	}
	if conclusion["best_k"] != float64(8) {
		t.Errorf("conclusion.best_k = %v, want 8", conclusion["best_k"])
	}
	if _, ok := decoded["sweep_error"]; ok {
		t.Error("completed sweep should not carry sweep_error")
	}
}

func TestJSONRenderer_SweepError(t *testing.T) {
	exp := createTestExperiment()
	exp.Sweep.FailedK = 16
	exp.Sweep.Err = errors.New("boom")

	var buf bytes.Buffer
	if err := NewJSONRenderer(&buf, true).Render(exp); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, `"sweep_error": "boom"`) {
		t.Errorf("pretty output should carry the sweep error:\n%s", output)
	}
	if !strings.Contains(output, `"failed_k": 16`) {
		t.Errorf("pretty output should carry failed_k:\n%s", output)
	}
}

func TestJSONRenderer_OneLinePerExperiment(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONRenderer(&buf, false)
	for i := 0; i < 3; i++ {
		if err := r.Render(createTestExperiment()); err != nil {
			t.Fatal(err)
		}
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("got %d lines, want 3", len(lines))
	}
}

// =============================================================================
// NewRenderer Tests
// =============================================================================

func TestNewRenderer(t *testing.T) {
	var buf bytes.Buffer

	if r, err := NewRenderer(FormatConsole, &buf, ux.ColorNever); err != nil {
		t.Errorf("console: %v", err)
	} else if _, ok := r.(*ConsoleRenderer); !ok {
		t.Errorf("console: got %T", r)
	}

	if r, err := NewRenderer(FormatJSON, &buf, ux.ColorNever); err != nil {
		t.Errorf("json: %v", err)
	} else if _, ok := r.(*JSONRenderer); !ok {
		t.Errorf("json: got %T", r)
	}

	if _, err := NewRenderer("xml", &buf, ux.ColorNever); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("xml: error = %v, want %v", err, ErrUnknownFormat)
	}
}
