// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd64(t *testing.T) {
	require := require.New(t)

	sum, err := Add64(0, 0)
	require.NoError(err)
	require.Zero(sum)

	sum, err = Add64(1, math.MaxUint64-1)
	require.NoError(err)
	require.Equal(uint64(math.MaxUint64), sum)

	_, err = Add64(1, math.MaxUint64)
	require.ErrorIs(err, ErrOverflow)

	_, err = Add64(math.MaxUint64, math.MaxUint64)
	require.ErrorIs(err, ErrOverflow)
}

func TestSub64(t *testing.T) {
	require := require.New(t)

	diff, err := Sub64(2, 1)
	require.NoError(err)
	require.Equal(uint64(1), diff)

	_, err = Sub64(1, 2)
	require.ErrorIs(err, ErrOverflow)
}
