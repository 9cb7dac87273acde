// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"github.com/AleutianAI/AleutianMinBench/services/minbench/dataset"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/sweep"
)

// MinBenchConfig is the full run configuration. DefaultConfig reproduces the
// stock experiment, so a config file only needs the fields it changes.
type MinBenchConfig struct {
	// Experiment: dataset sizes, trials and the value distribution
	Experiment ExperimentConfig `yaml:"experiment"`

	// Sweep: K ceiling policy
	Sweep sweep.Policy `yaml:"sweep"`

	// Engine: worker limits for the custom engine
	Engine EngineConfig `yaml:"engine"`

	// Hardware: where the logical core count comes from
	Hardware HardwareConfig `yaml:"hardware"`

	// Report: console or json
	Report ReportConfig `yaml:"report"`

	Logging LoggingConfig `yaml:"logging"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ExperimentConfig struct {
	Sizes    []int  `yaml:"sizes" validate:"required,min=1,dive,gte=1"` // e.g. [10000000, 50000000]
	Trials   int    `yaml:"trials" validate:"gte=1"`                    // timed runs averaged per K
	Seed     uint64 `yaml:"seed"`                                       // 0 seeds from the clock
	ValueMin int    `yaml:"value_min"`
	ValueMax int    `yaml:"value_max" validate:"gtefield=ValueMin"`
}

type EngineConfig struct {
	// MaxWorkers caps goroutines per Compute call; 0 is unlimited.
	MaxWorkers int `yaml:"max_workers" validate:"gte=0"`
}

type HardwareConfig struct {
	Source   string `yaml:"source" validate:"oneof=runtime cpuid"`
	Override int    `yaml:"override" validate:"gte=0"` // >0 replaces the probed core count
}

type ReportConfig struct {
	Format string `yaml:"format" validate:"oneof=console json"`
	Color  string `yaml:"color" validate:"oneof=auto always never"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	// MetricsFile receives the Prometheus text exposition on shutdown.
	MetricsFile  string `yaml:"metrics_file,omitempty" validate:"required_if=MetricExporter prometheus"`
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=TraceExporter otlp"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

// DefaultConfig returns the stock experiment: ten and fifty million values
// in [1, 1000000], three trials per K, K ceiling clamp(hw*4, 2, 64).
func DefaultConfig() MinBenchConfig {
	return MinBenchConfig{
		Experiment: ExperimentConfig{
			Sizes:    []int{10_000_000, 50_000_000},
			Trials:   sweep.DefaultTrials,
			ValueMin: dataset.DefaultMin,
			ValueMax: dataset.DefaultMax,
		},
		Sweep:    sweep.DefaultPolicy(),
		Engine:   EngineConfig{MaxWorkers: 0},
		Hardware: HardwareConfig{Source: "runtime"},
		Report:   ReportConfig{Format: "console", Color: "auto"},
		Logging:  LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
		},
	}
}
