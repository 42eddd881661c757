// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch

import (
	"errors"
	"fmt"

	"github.com/tractoml/tractobatch/pool"
)

var (
	ErrAlreadyConsumed = errors.New("sequence id consumed twice")
	ErrMaskCorrupted   = errors.New("per-subject remaining counts do not sum to the global count")
)

// usageMask tracks which sequences are still available within one epoch.
// Availability is monotonic: ids flip to used exactly once and there is no
// undo. A mask is owned by exactly one epoch iterator.
type usageMask struct {
	available []bool
	// numAvailable caches the count of true entries in [available].
	numAvailable int
}

func newUsageMask(size int) *usageMask {
	available := make([]bool, size)
	for i := range available {
		available[i] = true
	}
	return &usageMask{
		available:    available,
		numAvailable: size,
	}
}

func (m *usageMask) remainingTotal() int {
	return m.numAvailable
}

// remaining returns the number of available ids in [sl].
func (m *usageMask) remaining(sl pool.SubjectSlice) int {
	count := 0
	for _, ok := range m.available[sl.Start:sl.End] {
		if ok {
			count++
		}
	}
	return count
}

// unusedIn appends the available global ids in [sl] to [dst] and returns it.
func (m *usageMask) unusedIn(sl pool.SubjectSlice, dst []int) []int {
	for id := sl.Start; id < sl.End; id++ {
		if m.available[id] {
			dst = append(dst, id)
		}
	}
	return dst
}

// consume flips [globalIDs] to used. Consuming an id twice means the mask or
// the caller's bookkeeping is corrupted; the epoch must abort.
func (m *usageMask) consume(globalIDs []int) error {
	for _, id := range globalIDs {
		if !m.available[id] {
			return fmt.Errorf("%w: id %d", ErrAlreadyConsumed, id)
		}
		m.available[id] = false
		m.numAvailable--
	}
	return nil
}
