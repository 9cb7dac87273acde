// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package partition

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Examples(t *testing.T) {
	tests := []struct {
		size int
		k    int
		want []Chunk
	}{
		{6, 2, []Chunk{{0, 3}, {3, 6}}},
		{7, 3, []Chunk{{0, 3}, {3, 5}, {5, 7}}},
		{5, 5, []Chunk{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}}},
		{10, 1, []Chunk{{0, 10}}},
		{10, 4, []Chunk{{0, 3}, {3, 6}, {6, 8}, {8, 10}}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("size=%d/k=%d", tt.size, tt.k), func(t *testing.T) {
			got, err := Split(tt.size, tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSplit_CoversRangeWithoutGaps checks disjointness, full coverage and
// balanced lengths for every valid (size, k) pair up to 64.
func TestSplit_CoversRangeWithoutGaps(t *testing.T) {
	for size := 1; size <= 64; size++ {
		for k := 1; k <= size; k++ {
			chunks, err := Split(size, k)
			require.NoError(t, err)
			require.Len(t, chunks, k)

			next := 0
			minLen, maxLen := size, 0
			for i, c := range chunks {
				require.Equalf(t, next, c.Start, "size=%d k=%d chunk %d starts at wrong index", size, k, i)
				require.Greaterf(t, c.Len(), 0, "size=%d k=%d chunk %d is empty", size, k, i)
				minLen = min(minLen, c.Len())
				maxLen = max(maxLen, c.Len())
				next = c.End
			}
			require.Equalf(t, size, next, "size=%d k=%d does not reach the end", size, k)
			require.LessOrEqualf(t, maxLen-minLen, 1, "size=%d k=%d unbalanced", size, k)
		}
	}
}

func TestSplit_RemainderGoesToFirstChunks(t *testing.T) {
	chunks, err := Split(11, 4)
	require.NoError(t, err)

	lengths := make([]int, len(chunks))
	for i, c := range chunks {
		lengths[i] = c.Len()
	}
	assert.Equal(t, []int{3, 3, 3, 2}, lengths)
}

func TestSplit_InvalidWorkerCount(t *testing.T) {
	tests := []struct {
		name string
		size int
		k    int
	}{
		{"zero k", 10, 0},
		{"negative k", 10, -3},
		{"k above size", 3, 4},
		{"empty sequence", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.size, tt.k)
			assert.ErrorIs(t, err, ErrInvalidWorkerCount)
			assert.Nil(t, chunks)
		})
	}
}
