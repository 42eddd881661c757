// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mathext/prng"

	"github.com/tractoml/tractobatch/pool"
	"github.com/tractoml/tractobatch/utils/logging"
	"github.com/tractoml/tractobatch/utils/sampler"
)

var (
	ErrUnknownGroup   = errors.New("unknown sequence group")
	ErrMissingLengths = errors.New("length budgeting requires per-sequence lengths")
)

// Sampler draws batches from one sequence group. All randomness flows through
// a single seeded generator owned by the Sampler, so two samplers never
// interfere and a run is reproducible from its configuration.
//
// A Sampler is not safe for concurrent use and supports one live epoch
// iterator at a time. Parallel data-loading workers must each own an
// independent Sampler.
type Sampler struct {
	log     logging.Logger
	cfg     Config
	group   *pool.SequenceGroup
	metrics *metrics

	source   *prng.MT19937
	rng      *sampler.RNG
	selector sampler.WeightedWithoutReplacement
}

// New validates [cfg] against [view] and returns a ready sampler. All
// configuration errors surface here, never mid-epoch. [registerer] may be nil
// to skip metrics registration.
func New(
	cfg Config,
	view pool.View,
	log logging.Logger,
	registerer prometheus.Registerer,
) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	group, ok := view.Group(cfg.GroupName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, cfg.GroupName)
	}
	if cfg.BudgetUnit == Length && !group.HasLengths() {
		return nil, fmt.Errorf("%w: group %q", ErrMissingLengths, cfg.GroupName)
	}

	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	source := sampler.NewSource(cfg.Seed)
	return &Sampler{
		log:      log,
		cfg:      cfg,
		group:    group,
		metrics:  m,
		source:   source,
		rng:      sampler.NewRNG(source),
		selector: sampler.NewWeightedWithoutReplacement(source),
	}, nil
}

// Config returns a snapshot of the effective configuration, with derived
// values filled in.
func (s *Sampler) Config() Config {
	return s.cfg
}

// RNGState returns the generator's internal state, for checkpointing
// mid-training.
func (s *Sampler) RNGState() ([]byte, error) {
	return s.source.MarshalBinary()
}

// SetRNGState restores a state previously returned by RNGState.
func (s *Sampler) SetRNGState(state []byte) error {
	return s.source.UnmarshalBinary(state)
}

// Epoch starts a new epoch iteration over a fresh usage mask. Iterate with:
//
//	ep := s.Epoch()
//	for ep.Next() {
//		consume(ep.Batch())
//	}
//	if err := ep.Err(); err != nil { ... }
//
// The iteration is finite: it ends once every sequence in the group has been
// handed out, or on an internal-consistency failure.
func (s *Sampler) Epoch() *Epoch {
	s.log.Debug("starting epoch",
		zap.String("group", s.group.Name()),
		zap.Int("totalSequences", s.group.TotalCount()),
	)
	return &Epoch{
		sampler:    s,
		mask:       newUsageMask(s.group.TotalCount()),
		chunks:     newChunkSampler(s.log, s.group, s.cfg.BudgetUnit, s.cfg.ChunkSize, s.rng),
		needSelect: true,
	}
}
