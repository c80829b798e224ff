// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package pipeline drives frames from the decode collaborator through the
// compositor into the encode collaborator: a lazy, forward-only, single
// pass. Any decode, composite or encode failure aborts the whole run; a
// clear abort beats a silently corrupted frame in the output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ManuGH/demark/internal/compose"
	"github.com/ManuGH/demark/internal/log"
	"github.com/ManuGH/demark/internal/region"
)

// Source is the decode collaborator boundary. Next returns the pixel buffer
// of the next frame or io.EOF when the stream ends; the buffer may be
// reused between calls.
type Source interface {
	Next() ([]byte, error)
	Close() error
}

// Sink is the encode collaborator boundary. Frames must be written in
// strict decode order.
type Sink interface {
	Write(pix []byte) error
	Close() error
}

// Options tunes a single run.
type Options struct {
	// FrameLimit caps the number of processed frames (preview mode).
	// Zero means the whole video.
	FrameLimit int
	// Workers > 1 fans composite calls out across that many goroutines.
	// Output order is restored before the sink sees a frame.
	Workers int
	// Progress, when non-nil, is advanced once per encoded frame.
	Progress *Progress
}

// Stats summarizes a completed run.
type Stats struct {
	FramesProcessed int
	SlotFrames      [region.SlotCount]int
	Elapsed         time.Duration
}

// Run consumes the source, composites every frame and forwards it to the
// sink. Both collaborators are closed before Run returns, also on failure;
// with a frame limit the source is closed without draining it.
func Run(ctx context.Context, src Source, sink Sink, comp *compose.Compositor, opts Options) (Stats, error) {
	logger := log.WithComponentFromContext(ctx, "pipeline")
	start := time.Now()

	logger.Info().
		Str("event", "run.start").
		Int("frame_limit", opts.FrameLimit).
		Int("workers", opts.Workers).
		Msg("starting frame pipeline")

	var stats Stats
	var err error
	if opts.Workers > 1 {
		err = runParallel(ctx, src, sink, comp, opts, &stats)
	} else {
		err = runSequential(ctx, src, sink, comp, opts, &stats)
	}

	if cerr := src.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close source: %w", cerr)
	}
	if cerr := sink.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close sink: %w", cerr)
	}

	stats.Elapsed = time.Since(start)
	observeRun(stats, err)

	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "run.failed").
			Int("frames_processed", stats.FramesProcessed).
			Msg("frame pipeline aborted")
		return stats, err
	}

	logger.Info().
		Str("event", "run.done").
		Int("frames_processed", stats.FramesProcessed).
		Dur("elapsed", stats.Elapsed).
		Msg("frame pipeline finished")
	return stats, nil
}

func runSequential(ctx context.Context, src Source, sink Sink, comp *compose.Compositor, opts Options, stats *Stats) error {
	for idx := 0; opts.FrameLimit == 0 || idx < opts.FrameLimit; idx++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		pix, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode frame %d: %w", idx, err)
		}

		slot, err := comp.Composite(pix, idx)
		if err != nil {
			return fmt.Errorf("composite frame %d: %w", idx, err)
		}
		if err := sink.Write(pix); err != nil {
			return fmt.Errorf("encode frame %d: %w", idx, err)
		}

		recordFrame(stats, slot, opts.Progress)
	}
	return nil
}

func recordFrame(stats *Stats, slot region.Slot, progress *Progress) {
	stats.FramesProcessed++
	stats.SlotFrames[slot]++
	framesProcessed.Inc()
	framesBySlot.WithLabelValues(slot.String()).Inc()
	if progress != nil {
		progress.Incr()
	}
}

func observeRun(stats Stats, err error) {
	result := "ok"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = "canceled"
	case err != nil:
		result = "error"
	}
	runsTotal.WithLabelValues(result).Inc()
	runDuration.Observe(stats.Elapsed.Seconds())
}
