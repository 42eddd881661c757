// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tractoml/tractobatch/utils/set"
)

func TestWeightedWithoutReplacementDistinct(t *testing.T) {
	require := require.New(t)

	s := NewWeightedWithoutReplacement(NewSource(0))
	require.NoError(s.Initialize([]uint64{10, 3, 0, 7, 1}))

	for trial := 0; trial < 50; trial++ {
		indices, err := s.Sample(4)
		require.NoError(err)
		require.Len(indices, 4)

		seen := set.Of(indices...)
		require.Equal(4, seen.Len())

		// Index 2 has zero weight and must never be drawn.
		require.False(seen.Contains(2))
	}
}

func TestWeightedWithoutReplacementInsufficientWeight(t *testing.T) {
	require := require.New(t)

	s := NewWeightedWithoutReplacement(NewSource(0))
	require.NoError(s.Initialize([]uint64{1, 0, 1}))

	_, err := s.Sample(3)
	require.ErrorIs(err, ErrOutOfRange)
}

func TestWeightedWithoutReplacementEmpty(t *testing.T) {
	require := require.New(t)

	s := NewWeightedWithoutReplacement(NewSource(0))
	require.NoError(s.Initialize(nil))

	indices, err := s.Sample(0)
	require.NoError(err)
	require.Empty(indices)
}

func TestWeightedWithoutReplacementDeterministic(t *testing.T) {
	require := require.New(t)

	weights := []uint64{4, 1, 9, 2, 6, 3}

	a := NewWeightedWithoutReplacement(NewSource(1337))
	b := NewWeightedWithoutReplacement(NewSource(1337))
	require.NoError(a.Initialize(weights))
	require.NoError(b.Initialize(weights))

	for trial := 0; trial < 20; trial++ {
		aIndices, err := a.Sample(3)
		require.NoError(err)
		bIndices, err := b.Sample(3)
		require.NoError(err)
		require.Equal(aIndices, bIndices)
	}
}

func TestRNGUint64Inclusive(t *testing.T) {
	require := require.New(t)

	rng := NewRNG(NewSource(7))
	for i := 0; i < 1000; i++ {
		require.LessOrEqual(rng.Uint64Inclusive(9), uint64(9))
	}
	require.Zero(rng.Uint64Inclusive(0))
}
