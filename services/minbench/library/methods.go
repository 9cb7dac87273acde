// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package library

import (
	"slices"

	"github.com/destel/rill"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"

	"github.com/AleutianAI/AleutianMinBench/services/minbench/partition"
)

// Method names, in report order.
const (
	MethodDefault            = "slices.Min (default)"
	MethodSequential         = "lo.Min (sequential)"
	MethodParallel           = "lo/parallel (parallel)"
	MethodParallelVectorized = "rill (parallel, unrolled)"
)

// Method is one library routine under test. Run receives a non-empty slice.
type Method struct {
	Name string
	Run  func(data []int) (int, error)
}

// DefaultMethods returns the four library modes in report order.
//
// The parallel modes split the data into one chunk per worker; workers below
// 1 are treated as 1.
func DefaultMethods(workers int) []Method {
	workers = max(workers, 1)
	return []Method{
		{Name: MethodDefault, Run: func(data []int) (int, error) { return slices.Min(data), nil }},
		{Name: MethodSequential, Run: func(data []int) (int, error) { return lo.Min(data), nil }},
		{Name: MethodParallel, Run: loParallelMin(workers)},
		{Name: MethodParallelVectorized, Run: rillUnrolledMin(workers)},
	}
}

func loParallelMin(workers int) func([]int) (int, error) {
	return func(data []int) (int, error) {
		chunks, err := partition.Split(len(data), min(workers, len(data)))
		if err != nil {
			return 0, err
		}
		partials := lop.Map(chunks, func(c partition.Chunk, _ int) int {
			return lo.Min(data[c.Start:c.End])
		})
		return lo.Min(partials), nil
	}
}

func rillUnrolledMin(workers int) func([]int) (int, error) {
	return func(data []int) (int, error) {
		chunks, err := partition.Split(len(data), min(workers, len(data)))
		if err != nil {
			return 0, err
		}
		partials := rill.Map(rill.FromSlice(chunks, nil), workers, func(c partition.Chunk) (int, error) {
			return unrolledMin(data[c.Start:c.End]), nil
		})
		m, _, err := rill.Reduce(partials, workers, func(a, b int) (int, error) {
			return min(a, b), nil
		})
		return m, err
	}
}

// unrolledMin scans four independent lanes so the compiler can keep them in
// separate registers. Requires len(s) > 0.
func unrolledMin(s []int) int {
	m0, m1, m2, m3 := s[0], s[0], s[0], s[0]
	i := 0
	for ; i+4 <= len(s); i += 4 {
		m0 = min(m0, s[i])
		m1 = min(m1, s[i+1])
		m2 = min(m2, s[i+2])
		m3 = min(m3, s[i+3])
	}
	for ; i < len(s); i++ {
		m0 = min(m0, s[i])
	}
	return min(m0, m1, m2, m3)
}
