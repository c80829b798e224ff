// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demark_frames_processed_total",
		Help: "Frames decoded, composited and encoded.",
	})

	framesBySlot = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demark_frames_by_slot_total",
		Help: "Frames processed per active overlay slot.",
	}, []string{"slot"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demark_pipeline_runs_total",
		Help: "Completed pipeline runs by result.",
	}, []string{"result"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "demark_pipeline_run_duration_seconds",
		Help:    "Wall-clock duration of pipeline runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
