// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command minbench measures how fast the minimum of a large integer dataset
// can be found: by library methods, and by a custom fork-join engine swept
// over worker counts.
//
// Usage:
//
//	minbench                          # default run: 10M and 50M elements
//	minbench --sizes 1000000 --format json
//	minbench --config minbench.yaml
//	minbench candidates --hw 8        # list the K values a sweep would try
//	minbench hardware                 # show the probed core count
//	minbench config > minbench.yaml   # dump the default configuration
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
