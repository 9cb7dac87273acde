// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package hardware reports the host's parallelism and vector capabilities.
//
// The logical core count feeds the sweep's K candidates. A reading that is
// unavailable or nonsensical is reported as 0; the sweep policy then falls
// back to its floor.
package hardware

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"golang.org/x/sys/cpu"
)

// ErrUnknownSource indicates an unsupported parallelism source.
var ErrUnknownSource = errors.New("unknown hardware source")

// Source selects where the logical core count is read from.
type Source string

const (
	// SourceRuntime uses runtime.NumCPU, which honors the process's CPU
	// affinity mask.
	SourceRuntime Source = "runtime"

	// SourceCPUID uses the CPUID instruction via klauspost/cpuid. It
	// reports the whole package and ignores affinity.
	SourceCPUID Source = "cpuid"

	// SourceOverride means the count came from configuration.
	SourceOverride Source = "override"
)

// Info describes the host as seen by one probe.
type Info struct {
	LogicalCores  int      `json:"logical_cores"`
	PhysicalCores int      `json:"physical_cores"`
	Source        Source   `json:"source"`
	Brand         string   `json:"brand"`
	Features      []string `json:"features"`
}

// Prober reads hardware facts. The zero value is not usable; use NewProber.
type Prober struct {
	numCPU       func() int
	cpuidLogical func() int
}

// NewProber returns a Prober backed by the real runtime and CPUID.
func NewProber() *Prober {
	return &Prober{
		numCPU:       runtime.NumCPU,
		cpuidLogical: func() int { return cpuid.CPU.LogicalCores },
	}
}

// Probe reads the logical core count from source, or uses override when it
// is positive.
//
// Description:
//
//	SourceCPUID falls back to the runtime count when CPUID reports 0, which
//	happens on architectures where the instruction is unavailable. Negative
//	readings are clamped to 0.
//
// Outputs:
//   - Info: Host description. LogicalCores may be 0.
//   - error: ErrUnknownSource for an unsupported source.
func (p *Prober) Probe(source Source, override int) (Info, error) {
	info := Info{
		PhysicalCores: max(cpuid.CPU.PhysicalCores, 0),
		Brand:         cpuid.CPU.BrandName,
		Features:      VectorFeatures(),
	}

	if override > 0 {
		info.LogicalCores = override
		info.Source = SourceOverride
		return info, nil
	}

	switch source {
	case SourceRuntime, "":
		info.Source = SourceRuntime
		info.LogicalCores = p.numCPU()
	case SourceCPUID:
		info.Source = SourceCPUID
		info.LogicalCores = p.cpuidLogical()
		if info.LogicalCores <= 0 {
			info.Source = SourceRuntime
			info.LogicalCores = p.numCPU()
		}
	default:
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	info.LogicalCores = max(info.LogicalCores, 0)
	return info, nil
}

// VectorFeatures lists the SIMD extensions relevant to a linear integer scan.
func VectorFeatures() []string {
	var features []string
	if cpu.X86.HasSSE42 {
		features = append(features, "sse4.2")
	}
	if cpu.X86.HasAVX2 {
		features = append(features, "avx2")
	}
	if cpu.X86.HasAVX512F {
		features = append(features, "avx512f")
	}
	if cpu.ARM64.HasASIMD {
		features = append(features, "asimd")
	}
	if cpu.ARM64.HasSVE {
		features = append(features, "sve")
	}
	return features
}
