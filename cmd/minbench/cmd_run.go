// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianMinBench/pkg/logging"
	"github.com/AleutianAI/AleutianMinBench/pkg/ux"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/config"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/experiment"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/report"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

// loadConfig reads --config and applies the command-line overrides.
func loadConfig() (config.MinBenchConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.MinBenchConfig{}, err
	}

	if formatFlag != "" {
		cfg.Report.Format = formatFlag
	}
	if colorFlag != "" {
		cfg.Report.Color = colorFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if sizesFlag != "" {
		sizes, err := parseSizes(sizesFlag)
		if err != nil {
			return config.MinBenchConfig{}, err
		}
		cfg.Experiment.Sizes = sizes
	}

	if err := cfg.Validate(); err != nil {
		return config.MinBenchConfig{}, err
	}
	return cfg, nil
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ReplaceAll(p, "_", ""))
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", p, err)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func newLogger(cfg config.MinBenchConfig, w io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "minbench",
		JSON:    cfg.Logging.JSON,
		Writer:  w,
	}), nil
}

func telemetryConfig(cfg config.MinBenchConfig, w io.Writer) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	tc.TraceExporter = cfg.Telemetry.TraceExporter
	tc.MetricExporter = cfg.Telemetry.MetricExporter
	tc.MetricsFile = cfg.Telemetry.MetricsFile
	tc.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	tc.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	tc.Writer = w
	return tc
}

// runExperiment is the root command: the full benchmark over every size.
func runExperiment(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := telemetry.Init(ctx, telemetryConfig(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err.Error())
		}
	}()

	sink, err := telemetry.NewSink(&telemetry.SinkConfig{ServiceVersion: version})
	if err != nil {
		return err
	}
	defer sink.Close()

	mode, err := ux.ParseColorMode(cfg.Report.Color)
	if err != nil {
		return err
	}
	renderer, err := report.NewRenderer(cfg.Report.Format, cmd.OutOrStdout(), mode)
	if err != nil {
		return err
	}

	runner, err := experiment.NewRunner(cfg,
		experiment.WithProber(prober),
		experiment.WithRenderer(renderer),
		experiment.WithSink(sink),
		experiment.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	logger.Info("experiment starting", "sizes", cfg.Experiment.Sizes, "trials", cfg.Experiment.Trials)
	exps, err := runner.Run(ctx)
	if err != nil {
		logger.Error("experiment stopped", "completed", len(exps), "error", err.Error())
		return err
	}
	logger.Info("experiment finished", "completed", len(exps))
	return nil
}
