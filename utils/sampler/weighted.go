// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import "errors"

var ErrOutOfRange = errors.New("out of range")

// Weighted defines how to sample an index based on a provided weighted
// distribution. Initialize sets the distribution; Sample maps a value in
// [0, totalWeight) to the index owning that slice of the cumulative weight.
type Weighted interface {
	Initialize(weights []uint64) error
	Sample(sampleValue uint64) (int, error)
}

// NewWeighted returns a new sampler
func NewWeighted() Weighted {
	return &weightedHeap{}
}
