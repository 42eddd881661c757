// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tractoml/tractobatch/utils"
)

func TestNewSequenceGroup(t *testing.T) {
	require := require.New(t)

	group, err := NewSequenceGroup("trk", []SubjectSlice{
		{Subject: 1, Start: 10, End: 15},
		{Subject: 0, Start: 0, End: 10},
	}, nil)
	require.NoError(err)

	require.Equal("trk", group.Name())
	require.Equal(15, group.TotalCount())
	require.Equal(2, group.NumSubjects())
	// Subjects come back in slice order, regardless of construction order.
	require.Equal([]int{0, 1}, group.Subjects())
	require.True(utils.IsSortedAndUnique(group.Slices()))

	sl, ok := group.Slice(1)
	require.True(ok)
	require.Equal(5, sl.Count())

	_, ok = group.Slice(7)
	require.False(ok)

	require.False(group.HasLengths())
}

func TestNewSequenceGroupEmptySubject(t *testing.T) {
	require := require.New(t)

	group, err := NewSequenceGroup("trk", []SubjectSlice{
		{Subject: 0, Start: 0, End: 10},
		{Subject: 1, Start: 10, End: 10},
		{Subject: 2, Start: 10, End: 15},
	}, nil)
	require.NoError(err)

	require.Equal(15, group.TotalCount())
	require.Equal([]int{0, 1, 2}, group.Subjects())

	sl, ok := group.Slice(1)
	require.True(ok)
	require.Zero(sl.Count())
}

func TestNewSequenceGroupLengths(t *testing.T) {
	require := require.New(t)

	lengths := []float32{50, 60, 5}
	group, err := NewSequenceGroup("trk", []SubjectSlice{
		{Subject: 0, Start: 0, End: 3},
	}, lengths)
	require.NoError(err)
	require.True(group.HasLengths())
	require.Equal(float32(60), group.Length(1))

	// The group must not alias the caller's slice.
	lengths[1] = 0
	require.Equal(float32(60), group.Length(1))
}

func TestNewSequenceGroupInvalid(t *testing.T) {
	tests := []struct {
		name        string
		slices      []SubjectSlice
		lengths     []float32
		expectedErr error
	}{
		{
			name:        "no subjects",
			expectedErr: ErrNoSubjects,
		},
		{
			name: "gap between slices",
			slices: []SubjectSlice{
				{Subject: 0, Start: 0, End: 5},
				{Subject: 1, Start: 6, End: 10},
			},
			expectedErr: ErrOverlappingSlices,
		},
		{
			name: "overlapping slices",
			slices: []SubjectSlice{
				{Subject: 0, Start: 0, End: 5},
				{Subject: 1, Start: 4, End: 10},
			},
			expectedErr: ErrOverlappingSlices,
		},
		{
			name: "inverted slice",
			slices: []SubjectSlice{
				{Subject: 0, Start: 0, End: 5},
				{Subject: 1, Start: 9, End: 5},
			},
			expectedErr: ErrInvertedSlice,
		},
		{
			name: "does not start at zero",
			slices: []SubjectSlice{
				{Subject: 0, Start: 2, End: 5},
			},
			expectedErr: ErrSliceOffset,
		},
		{
			name: "duplicate subject",
			slices: []SubjectSlice{
				{Subject: 0, Start: 0, End: 5},
				{Subject: 0, Start: 5, End: 10},
			},
			expectedErr: ErrDuplicateSubject,
		},
		{
			name: "lengths size mismatch",
			slices: []SubjectSlice{
				{Subject: 0, Start: 0, End: 5},
			},
			lengths:     []float32{1, 2},
			expectedErr: ErrLengthsSize,
		},
		{
			name: "negative length",
			slices: []SubjectSlice{
				{Subject: 0, Start: 0, End: 2},
			},
			lengths:     []float32{1, -2},
			expectedErr: ErrNegativeLength,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSequenceGroup("trk", tt.slices, tt.lengths)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestInMemory(t *testing.T) {
	require := require.New(t)

	group, err := NewSequenceGroup("trk", []SubjectSlice{
		{Subject: 0, Start: 0, End: 3},
	}, nil)
	require.NoError(err)

	m := NewInMemory()
	require.NoError(m.Add(group))
	require.ErrorIs(m.Add(group), ErrDuplicateGroup)

	got, ok := m.Group("trk")
	require.True(ok)
	require.Equal(group, got)

	_, ok = m.Group("missing")
	require.False(ok)
}

func TestLoadFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "pool.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"groups": [
			{
				"name": "trk",
				"subjects": [
					{"subject": 0, "count": 10},
					{"subject": 1, "count": 5}
				]
			},
			{
				"name": "short",
				"subjects": [
					{"subject": 3, "start": 0, "end": 3}
				],
				"lengths": [50, 60, 5]
			}
		]
	}`), 0o600))

	m, err := LoadFile(path)
	require.NoError(err)

	trk, ok := m.Group("trk")
	require.True(ok)
	require.Equal(15, trk.TotalCount())
	sl, ok := trk.Slice(1)
	require.True(ok)
	require.Equal(SubjectSlice{Subject: 1, Start: 10, End: 15}, sl)

	short, ok := m.Group("short")
	require.True(ok)
	require.True(short.HasLengths())
	require.Equal(float32(5), short.Length(2))
}

func TestLoadFileInvalid(t *testing.T) {
	require := require.New(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(err)

	path := filepath.Join(t.TempDir(), "pool.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"groups": [{"name": "trk", "subjects": [{"subject": 0}]}]
	}`), 0o600))
	_, err = LoadFile(path)
	require.ErrorContains(err, "neither a slice nor a count")
}
