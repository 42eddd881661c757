// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import (
	"golang.org/x/exp/slices"

	"github.com/tractoml/tractobatch/utils/math"
)

var _ WeightedWithoutReplacement = (*weightedWithoutReplacementGeneric)(nil)

type weightedWithoutReplacementGeneric struct {
	rng *RNG
	w   Weighted

	weights []uint64
	total   uint64
}

func (s *weightedWithoutReplacementGeneric) Initialize(weights []uint64) error {
	totalWeight := uint64(0)
	for _, weight := range weights {
		newWeight, err := math.Add64(totalWeight, weight)
		if err != nil {
			return err
		}
		totalWeight = newWeight
	}
	s.weights = slices.Clone(weights)
	s.total = totalWeight
	return nil
}

func (s *weightedWithoutReplacementGeneric) Sample(count int) ([]int, error) {
	if count < 0 {
		return nil, ErrOutOfRange
	}

	// Work on a copy so that Sample can be called repeatedly over the same
	// initialized distribution.
	remaining := slices.Clone(s.weights)
	total := s.total

	indices := make([]int, count)
	for i := 0; i < count; i++ {
		if total == 0 {
			// More distinct indices requested than there are indices with
			// nonzero weight.
			return nil, ErrOutOfRange
		}
		if err := s.w.Initialize(remaining); err != nil {
			return nil, err
		}

		drawn := s.rng.Uint64Inclusive(total - 1)
		index, err := s.w.Sample(drawn)
		if err != nil {
			return nil, err
		}

		indices[i] = index
		total -= remaining[index]
		remaining[index] = 0
	}
	return indices, nil
}
