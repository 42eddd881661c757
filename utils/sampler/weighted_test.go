// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	safemath "github.com/tractoml/tractobatch/utils/math"
)

var weightedSamplers = map[string]func() Weighted{
	"heap":   func() Weighted { return &weightedHeap{} },
	"linear": func() Weighted { return &weightedLinear{} },
}

func TestWeightedOutOfRange(t *testing.T) {
	for name, newSampler := range weightedSamplers {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			s := newSampler()
			require.NoError(s.Initialize([]uint64{1}))

			_, err := s.Sample(1)
			require.ErrorIs(err, ErrOutOfRange)
		})
	}
}

func TestWeightedSingleton(t *testing.T) {
	for name, newSampler := range weightedSamplers {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			s := newSampler()
			require.NoError(s.Initialize([]uint64{1}))

			index, err := s.Sample(0)
			require.NoError(err)
			require.Zero(index)
		})
	}
}

func TestWeightedDistribution(t *testing.T) {
	for name, newSampler := range weightedSamplers {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			s := newSampler()
			require.NoError(s.Initialize([]uint64{1, 1, 2, 3, 4}))

			counts := make([]uint64, 5)
			for i := uint64(0); i < 11; i++ {
				index, err := s.Sample(i)
				require.NoError(err)
				counts[index]++
			}
			require.Equal([]uint64{1, 1, 2, 3, 4}, counts)
		})
	}
}

func TestWeightedInitializeOverflow(t *testing.T) {
	for name, newSampler := range weightedSamplers {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			s := newSampler()
			err := s.Initialize([]uint64{1, math.MaxUint64})
			require.ErrorIs(err, safemath.ErrOverflow)
		})
	}
}

func TestWeightedZeroWeightNeverSampled(t *testing.T) {
	for name, newSampler := range weightedSamplers {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			s := newSampler()
			require.NoError(s.Initialize([]uint64{0, 5, 0}))

			for i := uint64(0); i < 5; i++ {
				index, err := s.Sample(i)
				require.NoError(err)
				require.Equal(1, index)
			}
		})
	}
}
