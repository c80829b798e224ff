// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/demark/internal/compose"
	"github.com/ManuGH/demark/internal/region"
)

type frameJob struct {
	idx int
	pix []byte
}

type frameResult struct {
	idx  int
	pix  []byte
	slot region.Slot
}

// runParallel fans composite work out over opts.Workers goroutines. The
// decode collaborator hands out a reused buffer, so every job carries its
// own copy. A reorder buffer in the writer restores decode order before
// anything reaches the sink.
func runParallel(ctx context.Context, src Source, sink Sink, comp *compose.Compositor, opts Options, stats *Stats) error {
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan frameJob, opts.Workers)
	results := make(chan frameResult, opts.Workers)

	g.Go(func() error {
		defer close(jobs)
		for idx := 0; opts.FrameLimit == 0 || idx < opts.FrameLimit; idx++ {
			pix, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("decode frame %d: %w", idx, err)
			}
			cp := make([]byte, len(pix))
			copy(cp, pix)
			select {
			case jobs <- frameJob{idx: idx, pix: cp}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var workers sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for job := range jobs {
				slot, err := comp.Composite(job.pix, job.idx)
				if err != nil {
					return fmt.Errorf("composite frame %d: %w", job.idx, err)
				}
				select {
				case results <- frameResult{idx: job.idx, pix: job.pix, slot: slot}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		workers.Wait()
		close(results)
	}()

	g.Go(func() error {
		next := 0
		pending := make(map[int]frameResult, opts.Workers)
		for res := range results {
			pending[res.idx] = res
			for {
				f, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if err := sink.Write(f.pix); err != nil {
					return fmt.Errorf("encode frame %d: %w", next, err)
				}
				recordFrame(stats, f.slot, opts.Progress)
				next++
			}
		}
		return nil
	})

	return g.Wait()
}
