// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch

import (
	"go.uber.org/zap"

	"github.com/tractoml/tractobatch/pool"
	"github.com/tractoml/tractobatch/utils/logging"
	"github.com/tractoml/tractobatch/utils/sampler"
	"github.com/tractoml/tractobatch/utils/set"
)

// chunk is the outcome of one draw attempt for one subject.
type chunk struct {
	globalIDs   []int
	relativeIDs []int
	// cost of the kept ids, in the engine's budget unit.
	cost float64
	// noSupply is set when the subject has no unused sequences left.
	noSupply bool
	// budgetReached is set when this chunk hit the subject's allowance and
	// was trimmed to fit.
	budgetReached bool
}

// chunkSampler draws candidate chunks of unused ids for one subject at a
// time. Candidates are drawn with replacement and deduped before costing, so
// a duplicate draw within one attempt is never double-counted.
type chunkSampler struct {
	log       logging.Logger
	group     *pool.SequenceGroup
	unit      BudgetUnit
	chunkSize int
	rng       *sampler.RNG

	// scratch buffers, reused across attempts
	candidates []int
	drawn      []int
	seen       set.Set[int]
}

func newChunkSampler(
	log logging.Logger,
	group *pool.SequenceGroup,
	unit BudgetUnit,
	chunkSize int,
	rng *sampler.RNG,
) *chunkSampler {
	return &chunkSampler{
		log:       log,
		group:     group,
		unit:      unit,
		chunkSize: chunkSize,
		rng:       rng,
		drawn:     make([]int, 0, chunkSize),
		seen:      make(set.Set[int], chunkSize),
	}
}

func (c *chunkSampler) cost(globalID int) float64 {
	if c.unit == Length {
		return float64(c.group.Length(globalID))
	}
	return 1
}

// sample draws one chunk for the subject owning [sl]. [current] is the cost
// already realized for this subject this round and [allowance] its per-round
// sub-budget. The returned ids are not yet marked used; the caller commits
// them to the mask.
func (c *chunkSampler) sample(mask *usageMask, sl pool.SubjectSlice, current, allowance float64) chunk {
	c.candidates = mask.unusedIn(sl, c.candidates[:0])
	if len(c.candidates) == 0 {
		return chunk{noSupply: true}
	}

	// Draw with replacement, keeping first occurrences in draw order.
	c.drawn = c.drawn[:0]
	c.seen.Clear()
	for i := 0; i < c.chunkSize; i++ {
		id := c.candidates[c.rng.Uint64Inclusive(uint64(len(c.candidates)-1))]
		if c.seen.Contains(id) {
			continue
		}
		c.seen.Add(id)
		c.drawn = append(c.drawn, id)
	}

	chunkCost := 0.0
	for _, id := range c.drawn {
		chunkCost += c.cost(id)
	}

	kept := c.drawn
	var ch chunk
	if current+chunkCost >= allowance {
		ch.budgetReached = true

		// Keep the longest prefix, in draw order, that still fits the
		// subject's remaining allowance.
		cumulative := 0.0
		fit := 0
		for _, id := range kept {
			cost := c.cost(id)
			if current+cumulative+cost > allowance {
				break
			}
			cumulative += cost
			fit++
		}
		kept = kept[:fit]
		chunkCost = cumulative

		if fit == 0 {
			c.log.Warn("sub-budget too small to admit a single sequence",
				zap.Int("subject", sl.Subject),
				zap.Float64("allowance", allowance),
				zap.Float64("current", current),
			)
		}
	}

	ch.globalIDs = make([]int, len(kept))
	copy(ch.globalIDs, kept)
	ch.relativeIDs = make([]int, len(kept))
	for i, id := range kept {
		ch.relativeIDs[i] = id - sl.Start
	}
	ch.cost = chunkCost
	return ch
}
