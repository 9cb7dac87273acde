// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sweep

import (
	"errors"
	"slices"
)

// Policy decides which worker counts a sweep evaluates.
//
// Description:
//
//	The ceiling for K is hardware parallelism times Multiplier, raised to at
//	least Floor and then capped at Ceiling. Candidates are 1, every power of
//	two up to that ceiling, and the hardware parallelism itself.
//
// Thread Safety: Value type; safe to share.
type Policy struct {
	// Multiplier scales hardware parallelism into the K ceiling.
	// Default: 4
	Multiplier int `yaml:"multiplier" validate:"gte=1"`

	// Floor is the smallest allowed K ceiling.
	// Default: 2
	Floor int `yaml:"floor" validate:"gte=1"`

	// Ceiling is the largest allowed K ceiling.
	// Default: 64
	Ceiling int `yaml:"ceiling" validate:"gtefield=Floor"`
}

// DefaultPolicy returns {Multiplier: 4, Floor: 2, Ceiling: 64}.
func DefaultPolicy() Policy {
	return Policy{Multiplier: 4, Floor: 2, Ceiling: 64}
}

// Validate checks that the policy can produce a candidate set.
func (p Policy) Validate() error {
	if p.Multiplier < 1 {
		return errors.New("multiplier must be positive")
	}
	if p.Floor < 1 {
		return errors.New("floor must be positive")
	}
	if p.Ceiling < p.Floor {
		return errors.New("ceiling must be >= floor")
	}
	return nil
}

// MaxK returns min(max(Floor, hw*Multiplier), Ceiling).
// A non-positive hw counts as 0, which yields Floor.
func (p Policy) MaxK(hw int) int {
	hw = max(hw, 0)
	return min(max(p.Floor, hw*p.Multiplier), p.Ceiling)
}

// Candidates returns the sorted, de-duplicated K values to evaluate.
//
// Example:
//
//	DefaultPolicy().Candidates(8)  // [1 2 4 8 16 32]
//	DefaultPolicy().Candidates(6)  // [1 2 4 6 8 16]
//	DefaultPolicy().Candidates(0)  // [1 2]
func (p Policy) Candidates(hw int) []int {
	maxK := p.MaxK(hw)

	ks := []int{1}
	for k := 2; k <= maxK; k *= 2 {
		ks = append(ks, k)
	}
	if hw > 1 && !slices.Contains(ks, hw) {
		ks = append(ks, hw)
	}

	slices.Sort(ks)
	return slices.Compact(ks)
}
