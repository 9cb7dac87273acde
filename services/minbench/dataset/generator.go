// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dataset generates the integer sequences the benchmarks scan.
package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var (
	// ErrInvalidSize indicates a non-positive dataset size.
	ErrInvalidSize = errors.New("invalid dataset size")

	// ErrInvalidRange indicates Min > Max.
	ErrInvalidRange = errors.New("invalid value range")
)

const (
	// DefaultMin is the smallest generated value.
	DefaultMin = 1

	// DefaultMax is the largest generated value.
	DefaultMax = 1_000_000
)

// Generator produces uniformly distributed integers in [Min, Max].
//
// Thread Safety: Not safe for concurrent use; *rand.Rand is not.
type Generator struct {
	rng *rand.Rand
	min int
	max int
}

// NewGenerator creates a Generator drawing from rng.
//
// A nil rng is replaced by NewSeededRand(0), i.e. a time-seeded source.
func NewGenerator(rng *rand.Rand, minValue, maxValue int) (*Generator, error) {
	if minValue > maxValue {
		return nil, fmt.Errorf("%w: min %d > max %d", ErrInvalidRange, minValue, maxValue)
	}
	if rng == nil {
		rng = NewSeededRand(0)
	}
	return &Generator{rng: rng, min: minValue, max: maxValue}, nil
}

// NewSeededRand returns a PCG-backed *rand.Rand. Seed 0 means seed from the
// current time, so two runs differ; any other seed is reproducible.
func NewSeededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
}

// Generate returns n values in [Min, Max].
//
// The width of the range is taken as an unsigned value, so any Min <= Max
// is drawable, including the full int range.
func (g *Generator) Generate(n int) ([]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	base := uint64(g.min)
	width := uint64(g.max) - base + 1
	data := make([]int, n)
	for i := range data {
		data[i] = int(base + g.draw(width))
	}
	return data, nil
}

// draw returns a value in [0, width). A width of 0 means the range wrapped
// and covers all 2^64 values.
func (g *Generator) draw(width uint64) uint64 {
	if width == 0 {
		return g.rng.Uint64()
	}
	return g.rng.Uint64N(width)
}
