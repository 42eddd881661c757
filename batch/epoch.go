// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch

import (
	"go.uber.org/zap"

	"github.com/tractoml/tractobatch/pool"
)

// maxStalledRounds bounds how many consecutive subject re-selections may
// consume nothing before the epoch gives up. A stalled round means supply
// remains but the configured budget admits no sequence for the subjects that
// happened to be selected; re-selecting gives other subjects a chance before
// the epoch ends with a warning.
const maxStalledRounds = 10

// Epoch lazily yields batches until the group's sequences are exhausted. It
// is a single-threaded cooperative producer: each Next call assembles exactly
// one batch, and the usage mask is fully updated before Next returns. Not
// safe for concurrent use.
type Epoch struct {
	sampler *Sampler
	mask    *usageMask
	chunks  *chunkSampler

	// Current subject selection, in draw order.
	selected []pool.SubjectSlice
	// selectedAll is true when the selection covers every subject that had
	// remaining supply at selection time.
	selectedAll bool
	// allowance is the per-subject sub-budget for the current selection.
	allowance float64
	// cyclesLeft counts down batches on the current selection; -1 is
	// uncapped.
	cyclesLeft int
	// fresh is true until the current selection has assembled its first
	// batch.
	fresh bool

	needSelect bool
	stalled    int

	batch      Batch
	numBatches int
	done       bool
	err        error
}

// Next advances to the next batch. It returns false when the epoch is
// exhausted or an internal-consistency failure occurred; check Err to tell
// the two apart.
func (e *Epoch) Next() bool {
	if e.done {
		return false
	}

	for {
		if e.needSelect {
			ok, err := e.selectSubjects()
			if err != nil {
				e.fail(err)
				return false
			}
			if !ok {
				e.finish()
				return false
			}
			e.needSelect = false
			e.fresh = true
		}

		batch, cost, err := e.assemble()
		if err != nil {
			e.fail(err)
			return false
		}
		fresh := e.fresh
		e.fresh = false

		if e.cyclesLeft > 0 {
			e.cyclesLeft--
			if e.cyclesLeft == 0 {
				e.needSelect = true
			}
		}

		if len(batch) > 0 {
			e.stalled = 0
			e.batch = batch
			e.numBatches++
			e.sampler.metrics.batchesSampled.Inc()
			e.sampler.metrics.sequencesSampled.Add(float64(batch.NumSequences()))
			e.sampler.metrics.batchCost.Observe(cost)
			return true
		}

		// An empty batch means no selected subject contributed anything;
		// never yield it, end the cycle loop and re-select instead.
		e.needSelect = true
		if !fresh {
			// The selection simply ran dry after producing batches.
			continue
		}

		e.stalled++
		if e.selectedAll || e.stalled >= maxStalledRounds {
			e.sampler.log.Warn("batch budget admits no remaining sequence; ending epoch early",
				zap.Int("remaining", e.mask.remainingTotal()),
				zap.Int("stalledRounds", e.stalled),
			)
			e.finish()
			return false
		}
	}
}

// Batch returns the batch produced by the last successful Next call.
func (e *Epoch) Batch() Batch {
	return e.batch
}

// Err returns the error that terminated the epoch, if any. A nil error after
// Next returns false means clean exhaustion.
func (e *Epoch) Err() error {
	return e.err
}

// Exhausted reports whether the epoch ended cleanly: all supply consumed, or
// the remaining supply no longer fits the configured budget.
func (e *Epoch) Exhausted() bool {
	return e.done && e.err == nil
}

// NumBatches returns the number of batches yielded so far.
func (e *Epoch) NumBatches() int {
	return e.numBatches
}

func (e *Epoch) finish() {
	e.done = true
	e.batch = nil
	e.sampler.metrics.epochsCompleted.Inc()
	e.sampler.metrics.lastEpochBatches.Set(float64(e.numBatches))
	e.sampler.log.Debug("epoch exhausted",
		zap.Int("batches", e.numBatches),
	)
}

func (e *Epoch) fail(err error) {
	e.done = true
	e.batch = nil
	e.err = err
	e.sampler.log.Error("epoch aborted",
		zap.Error(err),
	)
}

// selectSubjects recomputes per-subject remaining counts and draws the next
// subject selection, weighted by remaining supply. It returns false when
// every subject is exhausted.
func (e *Epoch) selectSubjects() (bool, error) {
	group := e.sampler.group
	slices := group.Slices()

	counts := make([]uint64, len(slices))
	totalRemaining := 0
	nonzero := 0
	for i, sl := range slices {
		r := e.mask.remaining(sl)
		counts[i] = uint64(r)
		totalRemaining += r
		if r > 0 {
			nonzero++
		}
	}
	if totalRemaining != e.mask.remainingTotal() {
		return false, ErrMaskCorrupted
	}
	if totalRemaining == 0 {
		return false, nil
	}

	cfg := e.sampler.cfg
	if cfg.MaxSubjectsPerBatch == 0 {
		// Every subject with remaining supply participates, in slice order.
		e.selected = e.selected[:0]
		for i, sl := range slices {
			if counts[i] > 0 {
				e.selected = append(e.selected, sl)
			}
		}
		e.selectedAll = true
	} else {
		k := cfg.MaxSubjectsPerBatch
		if nonzero < k {
			k = nonzero
		}
		if err := e.sampler.selector.Initialize(counts); err != nil {
			return false, err
		}
		indices, err := e.sampler.selector.Sample(k)
		if err != nil {
			return false, err
		}
		e.selected = e.selected[:0]
		for _, i := range indices {
			e.selected = append(e.selected, slices[i])
		}
		e.selectedAll = k == nonzero
	}

	e.allowance = cfg.BatchBudget / float64(len(e.selected))
	if cfg.Cycles > 0 {
		e.cyclesLeft = cfg.Cycles
	} else {
		e.cyclesLeft = -1
	}

	subjects := make([]int, len(e.selected))
	for i, sl := range e.selected {
		subjects[i] = sl.Subject
	}
	e.sampler.log.Debug("selected subjects for the next cycles",
		zap.Ints("subjects", subjects),
		zap.Float64("allowancePerSubject", e.allowance),
	)
	return true, nil
}

// assemble runs the subject loop once over the current selection. It returns
// the batch and its realized cost in the configured budget unit.
func (e *Epoch) assemble() (Batch, float64, error) {
	batch := make(Batch, 0, len(e.selected))
	cost := 0.0
	for _, sl := range e.selected {
		relativeIDs, subjectCost, err := e.sampleSubject(sl)
		if err != nil {
			return nil, 0, err
		}
		cost += subjectCost
		if len(relativeIDs) > 0 {
			batch = append(batch, SubjectBatch{
				Subject:     sl.Subject,
				RelativeIDs: relativeIDs,
			})
		}
	}
	return batch, cost, nil
}

// sampleSubject draws chunks for one subject until its sub-budget is met or
// its supply is exhausted, committing consumed ids to the mask as it goes.
func (e *Epoch) sampleSubject(sl pool.SubjectSlice) ([]int, float64, error) {
	var relativeIDs []int
	current := 0.0
	for {
		ch := e.chunks.sample(e.mask, sl, current, e.allowance)
		e.sampler.metrics.chunkDraws.Inc()
		if ch.noSupply {
			break
		}
		if len(ch.globalIDs) == 0 {
			e.sampler.metrics.emptyChunks.Inc()
		} else {
			if err := e.mask.consume(ch.globalIDs); err != nil {
				return nil, 0, err
			}
			relativeIDs = append(relativeIDs, ch.relativeIDs...)
		}
		current += ch.cost
		if ch.budgetReached {
			break
		}
	}
	return relativeIDs, current, nil
}
