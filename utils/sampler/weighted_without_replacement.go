// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

// WeightedWithoutReplacement defines how to sample distinct indices without
// replacement from a weighted distribution. Each drawn index is removed from
// the distribution before the next draw, so a single Sample call never
// returns the same index twice.
type WeightedWithoutReplacement interface {
	Initialize(weights []uint64) error
	Sample(count int) ([]int, error)
}

// NewWeightedWithoutReplacement returns a new sampler drawing from [source].
//
// The linear sampler is used internally because the distribution must be
// rebuilt after every draw; for the small index counts this is used with, the
// linear rebuild is the cheapest.
func NewWeightedWithoutReplacement(source Source) WeightedWithoutReplacement {
	return &weightedWithoutReplacementGeneric{
		rng: NewRNG(source),
		w:   &weightedLinear{},
	}
}
