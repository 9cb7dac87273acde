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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath   string
	formatFlag   string // overrides report.format
	colorFlag    string // overrides report.color
	logLevelFlag string // overrides logging.level
	sizesFlag    string // comma-separated; overrides experiment.sizes
	hwFlag       int    // candidates: hardware parallelism, -1 probes

	rootCmd = &cobra.Command{
		Use:   "minbench",
		Short: "Benchmark parallel minimum search across worker counts",
		Long: `minbench generates large random integer datasets and times how long it
takes to find their minimum: first with library methods, then with a custom
fork-join engine swept over a range of worker counts K.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runExperiment, // Defined in cmd_run.go
	}

	candidatesCmd = &cobra.Command{
		Use:   "candidates",
		Short: "List the worker counts a sweep would evaluate",
		Args:  cobra.NoArgs,
		RunE:  runCandidates, // Defined in cmd_inspect.go
	}

	hardwareCmd = &cobra.Command{
		Use:   "hardware",
		Short: "Show the probed hardware parallelism",
		Args:  cobra.NoArgs,
		RunE:  runHardware, // Defined in cmd_inspect.go
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration as YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfig, // Defined in cmd_inspect.go
	}
)

func init() {
	rootCmd.Version = version

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error")

	rootCmd.Flags().StringVar(&formatFlag, "format", "", "report format: console or json")
	rootCmd.Flags().StringVar(&colorFlag, "color", "", "console color: auto, always or never")
	rootCmd.Flags().StringVar(&sizesFlag, "sizes", "", "comma-separated dataset sizes, e.g. 1000000,5000000")

	candidatesCmd.Flags().IntVar(&hwFlag, "hw", -1, "hardware parallelism to plan for; -1 probes the host")

	rootCmd.AddCommand(candidatesCmd, hardwareCmd, configCmd)
}
