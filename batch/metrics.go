// Copyright (C) 2023-2026, Tracto ML, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package batch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "tractobatch"

type metrics struct {
	batchesSampled   prometheus.Counter
	sequencesSampled prometheus.Counter
	chunkDraws       prometheus.Counter
	emptyChunks      prometheus.Counter
	epochsCompleted  prometheus.Counter
	lastEpochBatches prometheus.Gauge
	batchCost        prometheus.Histogram
}

// newMetrics registers the engine's metrics on [registerer]. A nil registerer
// leaves the metrics unregistered, which is what tests and library embedders
// want.
func newMetrics(registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		batchesSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "batches_sampled",
			Help:      "Number of batches yielded",
		}),
		sequencesSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sequences_sampled",
			Help:      "Number of sequence ids handed out",
		}),
		chunkDraws: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chunk_draws",
			Help:      "Number of chunk draw attempts",
		}),
		emptyChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "empty_chunks",
			Help:      "Number of chunk draws that kept no ids",
		}),
		epochsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "epochs_completed",
			Help:      "Number of epochs iterated to exhaustion",
		}),
		lastEpochBatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_epoch_batches",
			Help:      "Number of batches yielded by the last completed epoch",
		}),
		batchCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "batch_cost",
			Help:      "Realized cost of yielded batches, in the configured budget unit",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}

	if registerer == nil {
		return m, nil
	}
	err := errors.Join(
		registerer.Register(m.batchesSampled),
		registerer.Register(m.sequencesSampled),
		registerer.Register(m.chunkDraws),
		registerer.Register(m.emptyChunks),
		registerer.Register(m.epochsCompleted),
		registerer.Register(m.lastEpochBatches),
		registerer.Register(m.batchCost),
	)
	return m, err
}
