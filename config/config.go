// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config assembles the CLI configuration from flags, environment
// variables, and an optional config file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tractoml/tractobatch/batch"
	"github.com/tractoml/tractobatch/utils/logging"
)

const (
	ConfigFileKey = "config-file"

	PoolFileKey    = "pool"
	GroupKey       = "group"
	BatchBudgetKey = "batch-budget"
	BudgetUnitKey  = "budget-unit"
	ChunkSizeKey   = "chunk-size"
	MaxSubjectsKey = "max-subjects-per-batch"
	CyclesKey      = "cycles"
	SeedKey        = "seed"
	EpochsKey      = "epochs"

	LogLevelKey        = "log-level"
	LogDisplayLevelKey = "log-display-level"
	LogDirKey          = "log-dir"
)

const envPrefix = "tractobatch"

var (
	ErrMissingPoolFile   = errors.New("a pool file is required")
	ErrNonPositiveEpochs = errors.New("epochs must be positive")
)

// Config is everything the dry-run CLI needs.
type Config struct {
	PoolFile string
	Epochs   int
	Sampler  batch.Config
	Logging  logging.Config
}

// BuildFlagSet returns the complete set of flags for tractobatch.
func BuildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("tractobatch", flag.ContinueOnError)

	fs.String(ConfigFileKey, "", "Optional JSON config file overriding defaults; flags override the file")

	fs.String(PoolFileKey, "", "Path of the JSON pool description to sample from")
	fs.String(GroupKey, "", "Name of the sequence group to sample")
	fs.Float64(BatchBudgetKey, 0, "Total size of one batch, in the configured budget unit")
	fs.String(BudgetUnitKey, batch.Count.String(), "Budget unit: count or length")
	fs.Int(ChunkSizeKey, 0, "Candidate ids drawn per attempt; defaults to the budget for count budgeting")
	fs.Int(MaxSubjectsKey, 0, "Maximum subjects per batch; 0 samples from all subjects")
	fs.Int(CyclesKey, 0, "Batches drawn from one subject selection before re-selecting")
	fs.Uint64(SeedKey, 0, "Seed for the sampler's random generator")
	fs.Int(EpochsKey, 1, "Number of epochs to dry-run")

	fs.String(LogLevelKey, logging.Debug.String(), "Level written to log files")
	fs.String(LogDisplayLevelKey, logging.Info.String(), "Level written to stdout")
	fs.String(LogDirKey, "", "Directory for rotated log files; empty disables file logging")

	return fs
}

// BuildViper returns the viper environment with [args] parsed over the
// environment and the optional config file.
func BuildViper(args []string) (*viper.Viper, error) {
	v := viper.New()

	fs := BuildFlagSet()
	pfs := pflag.NewFlagSet("tractobatch", pflag.ContinueOnError)
	pfs.AddGoFlagSet(fs)
	if err := pfs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(pfs); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(ConfigFileKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %q: %w", path, err)
		}
	}
	return v, nil
}

// GetConfig builds the CLI configuration defined in the [v] environment.
func GetConfig(v *viper.Viper) (Config, error) {
	budgetUnit, err := batch.ToBudgetUnit(v.GetString(BudgetUnitKey))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		PoolFile: v.GetString(PoolFileKey),
		Epochs:   v.GetInt(EpochsKey),
		Sampler: batch.Config{
			GroupName:           v.GetString(GroupKey),
			BatchBudget:         v.GetFloat64(BatchBudgetKey),
			BudgetUnit:          budgetUnit,
			ChunkSize:           v.GetInt(ChunkSizeKey),
			MaxSubjectsPerBatch: v.GetInt(MaxSubjectsKey),
			Cycles:              v.GetInt(CyclesKey),
			Seed:                v.GetUint64(SeedKey),
		},
	}

	if cfg.PoolFile == "" {
		return Config{}, ErrMissingPoolFile
	}
	if cfg.Epochs <= 0 {
		return Config{}, fmt.Errorf("%w: got %d", ErrNonPositiveEpochs, cfg.Epochs)
	}
	if err := cfg.Sampler.Validate(); err != nil {
		return Config{}, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Directory = v.GetString(LogDirKey)
	if logCfg.LogLevel, err = logging.ToLevel(v.GetString(LogLevelKey)); err != nil {
		return Config{}, err
	}
	if logCfg.DisplayLevel, err = logging.ToLevel(v.GetString(LogDisplayLevelKey)); err != nil {
		return Config{}, err
	}
	cfg.Logging = logCfg

	return cfg, nil
}
