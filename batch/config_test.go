// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectedErr error
	}{
		{
			name: "valid count",
			cfg: Config{
				BatchBudget: 100,
				BudgetUnit:  Count,
			},
		},
		{
			name: "valid count with matching chunk size",
			cfg: Config{
				BatchBudget: 100,
				BudgetUnit:  Count,
				ChunkSize:   100,
			},
		},
		{
			name: "valid length",
			cfg: Config{
				BatchBudget: 2000.5,
				BudgetUnit:  Length,
				ChunkSize:   256,
			},
		},
		{
			name: "valid cycles",
			cfg: Config{
				BatchBudget:         10,
				BudgetUnit:          Count,
				MaxSubjectsPerBatch: 2,
				Cycles:              3,
			},
		},
		{
			name: "zero budget",
			cfg: Config{
				BudgetUnit: Count,
			},
			expectedErr: ErrNonPositiveBudget,
		},
		{
			name: "negative budget",
			cfg: Config{
				BatchBudget: -5,
				BudgetUnit:  Count,
			},
			expectedErr: ErrNonPositiveBudget,
		},
		{
			name: "unknown unit",
			cfg: Config{
				BatchBudget: 10,
				BudgetUnit:  BudgetUnit(42),
			},
			expectedErr: ErrUnknownBudgetUnit,
		},
		{
			name: "fractional count budget",
			cfg: Config{
				BatchBudget: 10.5,
				BudgetUnit:  Count,
			},
			expectedErr: ErrNonIntegralCountBudget,
		},
		{
			name: "count chunk size mismatch",
			cfg: Config{
				BatchBudget: 10,
				BudgetUnit:  Count,
				ChunkSize:   5,
			},
			expectedErr: ErrChunkSizeMismatch,
		},
		{
			name: "length without chunk size",
			cfg: Config{
				BatchBudget: 100,
				BudgetUnit:  Length,
			},
			expectedErr: ErrNonPositiveChunkSize,
		},
		{
			name: "cycles without max subjects",
			cfg: Config{
				BatchBudget: 10,
				BudgetUnit:  Count,
				Cycles:      2,
			},
			expectedErr: ErrCyclesWithoutMaxSubjects,
		},
		{
			name: "negative max subjects",
			cfg: Config{
				BatchBudget:         10,
				BudgetUnit:          Count,
				MaxSubjectsPerBatch: -1,
			},
			expectedErr: ErrNegativeOption,
		},
		{
			name: "negative cycles",
			cfg: Config{
				BatchBudget:         10,
				BudgetUnit:          Count,
				MaxSubjectsPerBatch: 1,
				Cycles:              -1,
			},
			expectedErr: ErrNegativeOption,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	require := require.New(t)

	cfg := Config{
		BatchBudget: 100,
		BudgetUnit:  Count,
	}
	require.NoError(cfg.Validate())
	require.Equal(100, cfg.withDefaults().ChunkSize)
}

func TestBudgetUnitJSON(t *testing.T) {
	require := require.New(t)

	b, err := json.Marshal(Length)
	require.NoError(err)
	require.Equal(`"length"`, string(b))

	var u BudgetUnit
	require.NoError(json.Unmarshal([]byte(`"COUNT"`), &u))
	require.Equal(Count, u)

	require.Error(json.Unmarshal([]byte(`"bytes"`), &u))

	_, err = json.Marshal(BudgetUnit(7))
	require.ErrorIs(err, ErrUnknownBudgetUnit)
}

func TestToBudgetUnit(t *testing.T) {
	require := require.New(t)

	u, err := ToBudgetUnit("Count")
	require.NoError(err)
	require.Equal(Count, u)

	u, err = ToBudgetUnit("length")
	require.NoError(err)
	require.Equal(Length, u)

	_, err = ToBudgetUnit("mm")
	require.ErrorIs(err, ErrUnknownBudgetUnit)
}
