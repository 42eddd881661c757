// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sampler

import (
	"math"

	"gonum.org/v1/gonum/mathext/prng"
)

// Source produces the raw randomness every sampler in this package draws
// from. All sampling in a batch engine flows through exactly one Source so
// that a run is reproducible from its seed and the Source's state can be
// checkpointed.
type Source interface {
	// Uint64 returns a random number in [0, MaxUint64] and advances the
	// generator's state.
	Uint64() uint64
}

// NewSource returns a seeded Mersenne Twister source. We don't use a
// cryptographically secure source of randomness here, as there's no need to
// ensure a truly random sampling.
//
// The returned generator implements encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler, which is how callers checkpoint and restore
// sampling state.
func NewSource(seed uint64) *prng.MT19937 {
	source := prng.NewMT19937()
	source.Seed(seed)
	return source
}

// RNG converts a Source's raw output into bounded draws. It is not safe for
// concurrent use; each sampling engine owns its own RNG.
type RNG struct {
	src Source
}

func NewRNG(source Source) *RNG {
	return &RNG{src: source}
}

// Uint64Inclusive returns a pseudo-random number in [0,n].
func (r *RNG) Uint64Inclusive(n uint64) uint64 {
	switch {
	// n+1 is power of two, so we can just mask
	//
	// Note: This does work for MaxUint64 as overflow is explicitly part of
	// the compiler specification: https://go.dev/ref/spec#Integer_overflow
	case n&(n+1) == 0:
		return r.uint64() & n

	// n is greater than MaxUint64/2 so we need to just iterate until we get a
	// number in the requested range.
	case n > math.MaxInt64:
		v := r.uint64()
		for v > n {
			v = r.uint64()
		}
		return v

	// n is less than MaxUint64/2 so we generate a number in the range
	// [0, k*(n+1)) where k is the largest integer such that k*(n+1) is less
	// than or equal to MaxUint64/2. We can't easily find k such that k*(n+1)
	// is less than or equal to MaxUint64 because the calculation would
	// overflow.
	default:
		maximum := (1 << 63) - 1 - (1<<63)%(n+1)
		v := r.uint63()
		for v > maximum {
			v = r.uint63()
		}
		return v % (n + 1)
	}
}

// uint63 returns a random number in [0, MaxInt64]
func (r *RNG) uint63() uint64 {
	return r.uint64() & math.MaxInt64
}

// uint64 returns a random number in [0, MaxUint64]
func (r *RNG) uint64() uint64 {
	return r.src.Uint64()
}
