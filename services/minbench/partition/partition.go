// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package partition splits an index range into contiguous worker chunks.
package partition

import (
	"errors"
	"fmt"
)

// ErrInvalidWorkerCount indicates a chunk count outside [1, size].
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// Chunk is the half-open index range [Start, End).
type Chunk struct {
	Start int
	End   int
}

// Len returns the number of elements in the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Split divides [0, size) into exactly k contiguous chunks.
//
// Description:
//
//	Every chunk holds size/k elements; the first size%k chunks hold one
//	extra. Chunks are returned in increasing order with no gaps and no
//	overlap, so chunk i always covers the same range for a given size and k.
//
// Inputs:
//   - size: Length of the sequence. Must be >= 1.
//   - k: Number of chunks. Must satisfy 1 <= k <= size; callers clamp k to
//     size before calling.
//
// Outputs:
//   - []Chunk: Exactly k chunks covering [0, size).
//   - error: ErrInvalidWorkerCount if k is out of range.
//
// Example:
//
//	chunks, _ := partition.Split(7, 3)
//	// [{0 3} {3 5} {5 7}]
func Split(size, k int) ([]Chunk, error) {
	if k <= 0 || k > size {
		return nil, fmt.Errorf("%w: k=%d size=%d", ErrInvalidWorkerCount, k, size)
	}

	base := size / k
	remainder := size % k

	chunks := make([]Chunk, k)
	start := 0
	for i := range chunks {
		length := base
		if i < remainder {
			length++
		}
		chunks[i] = Chunk{Start: start, End: start + length}
		start += length
	}
	return chunks, nil
}
