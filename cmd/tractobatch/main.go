// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// tractobatch dry-runs a batch sampling plan over a pool description,
// reporting what a training loop would be fed without loading any sequence
// content.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tractoml/tractobatch/batch"
	"github.com/tractoml/tractobatch/config"
	"github.com/tractoml/tractobatch/pool"
	"github.com/tractoml/tractobatch/utils/logging"
)

func main() {
	v, err := config.BuildViper(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't parse flags: %s\n", err)
		os.Exit(1)
	}
	cfg, err := config.GetConfig(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", err)
		os.Exit(1)
	}

	logFactory := logging.NewFactory(cfg.Logging)
	defer logFactory.Close()

	log, err := logFactory.Make("main")
	if err != nil {
		fmt.Fprintf(os.Stderr, "couldn't create logger: %s\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("dry run failed",
			zap.Error(err),
		)
		logFactory.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, log logging.Logger) error {
	view, err := pool.LoadFile(cfg.PoolFile)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	s, err := batch.New(cfg.Sampler, view, log, registry)
	if err != nil {
		return err
	}

	// The effective configuration is what an experiment needs to reproduce
	// this run.
	log.Info("sampler configured",
		zap.Reflect("config", s.Config()),
	)

	totalBatches := 0
	totalSequences := 0
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		ep := s.Epoch()
		for ep.Next() {
			b := ep.Batch()
			totalSequences += b.NumSequences()
			log.Debug("batch",
				zap.Int("epoch", epoch),
				zap.Int("index", ep.NumBatches()),
				zap.Int("subjects", len(b)),
				zap.Int("sequences", b.NumSequences()),
			)
		}
		if err := ep.Err(); err != nil {
			return err
		}
		totalBatches += ep.NumBatches()
		log.Info("epoch complete",
			zap.Int("epoch", epoch),
			zap.Int("batches", ep.NumBatches()),
		)
	}

	log.Info("dry run complete",
		zap.Int("epochs", cfg.Epochs),
		zap.Int("batches", totalBatches),
		zap.Int("sequences", totalSequences),
	)
	return nil
}
