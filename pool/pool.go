// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool exposes read-only views over sequence pools: large collections
// of variable-length sequences ("streamlines") partitioned per subject. Each
// subject owns a contiguous half-open range of global sequence ids. How a
// pool is built and persisted is the provider's concern; samplers only read.
package pool

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/tractoml/tractobatch/utils"
)

var (
	ErrNoSubjects        = errors.New("group has no subjects")
	ErrOverlappingSlices = errors.New("subject slices overlap or leave a gap")
	ErrInvertedSlice     = errors.New("subject slice is inverted")
	ErrDuplicateSubject  = errors.New("duplicate subject id")
	ErrSliceOffset       = errors.New("subject slices must start at zero")
	ErrLengthsSize       = errors.New("lengths array does not match total sequence count")
	ErrNegativeLength    = errors.New("negative sequence length")
	ErrDuplicateGroup    = errors.New("duplicate group name")
)

// SubjectSlice is the contiguous range [Start, End) of global sequence ids
// owned by one subject.
type SubjectSlice struct {
	Subject int `json:"subject"`
	Start   int `json:"start"`
	End     int `json:"end"`
}

// Count returns the number of sequences in the slice.
func (s SubjectSlice) Count() int {
	return s.End - s.Start
}

func (s SubjectSlice) Less(other SubjectSlice) bool {
	if s.Start != other.Start {
		return s.Start < other.Start
	}
	// An empty slice sorts before the non-empty slice sharing its start.
	return s.End < other.End
}

// SequenceGroup is one named group of sequences, with its subject partition
// and, optionally, the physical length of every sequence. Immutable once
// constructed.
type SequenceGroup struct {
	name       string
	totalCount int
	slices     []SubjectSlice
	bySubject  map[int]int // subject id -> index into [slices]
	lengths    []float32   // nil when the provider has no length info
}

// NewSequenceGroup validates that [subjectSlices] partition [0, totalCount)
// exactly, with totalCount taken from the end of the last slice. [lengths]
// may be nil; when present it must hold one non-negative value per global id.
func NewSequenceGroup(name string, subjectSlices []SubjectSlice, lengths []float32) (*SequenceGroup, error) {
	if len(subjectSlices) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSubjects, name)
	}

	sorted := make([]SubjectSlice, len(subjectSlices))
	copy(sorted, subjectSlices)
	utils.Sort(sorted)

	if sorted[0].Start != 0 {
		return nil, fmt.Errorf("%w: first slice starts at %d", ErrSliceOffset, sorted[0].Start)
	}

	bySubject := make(map[int]int, len(sorted))
	for i, sl := range sorted {
		// Empty slices are legal: a subject may own no sequences.
		if sl.End < sl.Start {
			return nil, fmt.Errorf("%w: subject %d has [%d, %d)", ErrInvertedSlice, sl.Subject, sl.Start, sl.End)
		}
		if i > 0 && sl.Start != sorted[i-1].End {
			return nil, fmt.Errorf("%w: subject %d starts at %d, previous ends at %d",
				ErrOverlappingSlices, sl.Subject, sl.Start, sorted[i-1].End)
		}
		if _, ok := bySubject[sl.Subject]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateSubject, sl.Subject)
		}
		bySubject[sl.Subject] = i
	}

	totalCount := sorted[len(sorted)-1].End
	if lengths != nil {
		if len(lengths) != totalCount {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrLengthsSize, len(lengths), totalCount)
		}
		for i, l := range lengths {
			if l < 0 {
				return nil, fmt.Errorf("%w: id %d has length %f", ErrNegativeLength, i, l)
			}
		}
		lengths = slices.Clone(lengths)
	}

	return &SequenceGroup{
		name:       name,
		totalCount: totalCount,
		slices:     sorted,
		bySubject:  bySubject,
		lengths:    lengths,
	}, nil
}

func (g *SequenceGroup) Name() string {
	return g.name
}

// TotalCount returns the number of sequences across all subjects.
func (g *SequenceGroup) TotalCount() int {
	return g.totalCount
}

func (g *SequenceGroup) NumSubjects() int {
	return len(g.slices)
}

// Subjects returns the subject ids in slice order. The returned slice is
// freshly allocated.
func (g *SequenceGroup) Subjects() []int {
	subjects := make([]int, len(g.slices))
	for i, sl := range g.slices {
		subjects[i] = sl.Subject
	}
	return subjects
}

// Slices returns the subject partition sorted by start offset. Callers must
// not mutate the returned slice.
func (g *SequenceGroup) Slices() []SubjectSlice {
	return g.slices
}

// Slice returns the id range owned by [subject].
func (g *SequenceGroup) Slice(subject int) (SubjectSlice, bool) {
	i, ok := g.bySubject[subject]
	if !ok {
		return SubjectSlice{}, false
	}
	return g.slices[i], true
}

// HasLengths reports whether per-sequence physical lengths are available.
func (g *SequenceGroup) HasLengths() bool {
	return g.lengths != nil
}

// Length returns the physical length of the sequence with [globalID].
// Only valid when HasLengths().
func (g *SequenceGroup) Length(globalID int) float32 {
	return g.lengths[globalID]
}

// View is the read-only interface samplers consume. Providers may be backed
// by anything; InMemory is the reference implementation.
type View interface {
	Group(name string) (*SequenceGroup, bool)
}
