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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianMinBench/services/minbench/config"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/experiment"
	"github.com/AleutianAI/AleutianMinBench/services/minbench/hardware"
)

// prober is swapped out by tests.
var prober experiment.HardwareProber = hardware.NewProber()

func probeHardware(cfg config.MinBenchConfig) (hardware.Info, error) {
	return prober.Probe(hardware.Source(cfg.Hardware.Source), cfg.Hardware.Override)
}

// runCandidates prints the K set for --hw, or for the probed host.
func runCandidates(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hw := hwFlag
	if hw < 0 {
		info, err := probeHardware(cfg)
		if err != nil {
			return err
		}
		hw = info.LogicalCores
	}

	ks := cfg.Sweep.Candidates(hw)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hardware parallelism: %d\n", hw)
	fmt.Fprintf(out, "max K: %d\n", cfg.Sweep.MaxK(hw))
	fmt.Fprintf(out, "candidates: %s\n", strings.Join(lo.Map(ks, func(k int, _ int) string {
		return strconv.Itoa(k)
	}), " "))
	return nil
}

// runHardware prints the probe result as JSON.
func runHardware(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	info, err := probeHardware(cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

// runConfig prints DefaultConfig as YAML.
func runConfig(cmd *cobra.Command, _ []string) error {
	data, err := config.DefaultYAML()
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
