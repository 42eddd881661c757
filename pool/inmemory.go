// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"encoding/json"
	"fmt"
	"os"
)

var _ View = (*InMemory)(nil)

// InMemory is a map-backed View. It is the reference provider, used by tests
// and by the dry-run CLI.
type InMemory struct {
	groups map[string]*SequenceGroup
}

func NewInMemory() *InMemory {
	return &InMemory{
		groups: make(map[string]*SequenceGroup),
	}
}

// Add registers [group]. Registering two groups with the same name is an
// error.
func (m *InMemory) Add(group *SequenceGroup) error {
	if _, ok := m.groups[group.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateGroup, group.Name())
	}
	m.groups[group.Name()] = group
	return nil
}

func (m *InMemory) Group(name string) (*SequenceGroup, bool) {
	group, ok := m.groups[name]
	return group, ok
}

// fileFormat is the JSON shape consumed by LoadFile. A subject is described
// either by an explicit [start, end) slice or by a count, in which case
// slices are laid out contiguously in listed order.
type fileFormat struct {
	Groups []groupFormat `json:"groups"`
}

type groupFormat struct {
	Name     string          `json:"name"`
	Subjects []subjectFormat `json:"subjects"`
	Lengths  []float32       `json:"lengths,omitempty"`
}

type subjectFormat struct {
	Subject int  `json:"subject"`
	Count   *int `json:"count,omitempty"`
	Start   *int `json:"start,omitempty"`
	End     *int `json:"end,omitempty"`
}

// LoadFile reads a pool description from [path].
func LoadFile(path string) (*InMemory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read pool file: %w", err)
	}

	var file fileFormat
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("couldn't parse pool file %q: %w", path, err)
	}

	m := NewInMemory()
	for _, gf := range file.Groups {
		slices := make([]SubjectSlice, 0, len(gf.Subjects))
		next := 0
		for _, sf := range gf.Subjects {
			var sl SubjectSlice
			switch {
			case sf.Start != nil && sf.End != nil:
				sl = SubjectSlice{Subject: sf.Subject, Start: *sf.Start, End: *sf.End}
			case sf.Count != nil:
				sl = SubjectSlice{Subject: sf.Subject, Start: next, End: next + *sf.Count}
			default:
				return nil, fmt.Errorf("subject %d in group %q has neither a slice nor a count",
					sf.Subject, gf.Name)
			}
			next = sl.End
			slices = append(slices, sl)
		}

		group, err := NewSequenceGroup(gf.Name, slices, gf.Lengths)
		if err != nil {
			return nil, fmt.Errorf("invalid group %q: %w", gf.Name, err)
		}
		if err := m.Add(group); err != nil {
			return nil, err
		}
	}
	return m, nil
}
