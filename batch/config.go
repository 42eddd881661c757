// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNonPositiveBudget        = errors.New("batch budget must be positive")
	ErrUnknownBudgetUnit        = errors.New("unknown budget unit")
	ErrNonIntegralCountBudget   = errors.New("count budget must be integral")
	ErrChunkSizeMismatch        = errors.New("chunk size must equal the batch budget for count budgeting")
	ErrNonPositiveChunkSize     = errors.New("chunk size must be positive")
	ErrCyclesWithoutMaxSubjects = errors.New("cycles requires max subjects per batch")
	ErrNegativeOption           = errors.New("option must not be negative")
)

// BudgetUnit is the measure used to size a batch: either every sequence costs
// one unit, or it costs its physical length.
type BudgetUnit byte

const (
	Count BudgetUnit = iota
	Length
)

const (
	countStr  = "count"
	lengthStr = "length"
)

func (u BudgetUnit) String() string {
	switch u {
	case Count:
		return countStr
	case Length:
		return lengthStr
	default:
		return fmt.Sprintf("unknown(%d)", u)
	}
}

// Inverse of BudgetUnit.String()
func ToBudgetUnit(s string) (BudgetUnit, error) {
	switch strings.ToLower(s) {
	case countStr:
		return Count, nil
	case lengthStr:
		return Length, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBudgetUnit, s)
	}
}

func (u BudgetUnit) MarshalJSON() ([]byte, error) {
	if u != Count && u != Length {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBudgetUnit, u)
	}
	return json.Marshal(u.String())
}

func (u *BudgetUnit) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	var err error
	*u, err = ToBudgetUnit(str)
	return err
}

// Config holds every parameter needed to reconstruct a sampler (except the
// pool itself). It is logged at startup for experiment reproducibility.
type Config struct {
	// GroupName selects the sequence group to sample from.
	GroupName string `json:"groupName"`
	// BatchBudget is the total size of one batch, measured in [BudgetUnit].
	BatchBudget float64    `json:"batchBudget"`
	BudgetUnit  BudgetUnit `json:"budgetUnit"`
	// ChunkSize is the number of candidate ids drawn per attempt. For Count
	// budgeting it must equal BatchBudget; leaving it zero picks that value.
	ChunkSize int `json:"chunkSize"`
	// MaxSubjectsPerBatch bounds how many subjects contribute to one batch.
	// Zero means every subject with remaining supply participates.
	MaxSubjectsPerBatch int `json:"maxSubjectsPerBatch"`
	// Cycles is the number of consecutive batches drawn from one subject
	// selection before re-selecting. Zero means re-use the selection until it
	// runs dry. Only legal when MaxSubjectsPerBatch is set.
	Cycles int `json:"cycles"`
	// Seed for the sampler's random generator.
	Seed uint64 `json:"seed"`
}

// Validate returns the first configuration error. All validation happens at
// construction; a valid sampler never fails mid-epoch on configuration.
func (c Config) Validate() error {
	switch {
	case c.BatchBudget <= 0:
		return fmt.Errorf("%w: got %f", ErrNonPositiveBudget, c.BatchBudget)
	case c.BudgetUnit != Count && c.BudgetUnit != Length:
		return fmt.Errorf("%w: %d", ErrUnknownBudgetUnit, c.BudgetUnit)
	case c.MaxSubjectsPerBatch < 0:
		return fmt.Errorf("%w: maxSubjectsPerBatch = %d", ErrNegativeOption, c.MaxSubjectsPerBatch)
	case c.Cycles < 0:
		return fmt.Errorf("%w: cycles = %d", ErrNegativeOption, c.Cycles)
	case c.Cycles != 0 && c.MaxSubjectsPerBatch == 0:
		return fmt.Errorf("%w: cycles = %d", ErrCyclesWithoutMaxSubjects, c.Cycles)
	}

	switch c.BudgetUnit {
	case Count:
		if c.BatchBudget != float64(int(c.BatchBudget)) {
			return fmt.Errorf("%w: got %f", ErrNonIntegralCountBudget, c.BatchBudget)
		}
		if c.ChunkSize != 0 && c.ChunkSize != int(c.BatchBudget) {
			return fmt.Errorf("%w: chunkSize = %d, batchBudget = %f",
				ErrChunkSizeMismatch, c.ChunkSize, c.BatchBudget)
		}
	case Length:
		if c.ChunkSize <= 0 {
			return fmt.Errorf("%w: got %d", ErrNonPositiveChunkSize, c.ChunkSize)
		}
	}
	return nil
}

// withDefaults returns a copy with derived values filled in.
func (c Config) withDefaults() Config {
	if c.BudgetUnit == Count {
		c.ChunkSize = int(c.BatchBudget)
	}
	return c
}
