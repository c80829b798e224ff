// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package pipeline

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

// Progress tracks per-frame completion of a run. It is safe for concurrent
// use: the pipeline advances it while a terminal renderer or the status
// endpoint reads snapshots.
type Progress struct {
	total int64
	done  atomic.Int64
	start time.Time
}

// NewProgress returns a tracker for total frames. total == 0 means the
// frame count is unknown; Percent is then reported as 0.
func NewProgress(total int) *Progress {
	return &Progress{total: int64(total), start: time.Now()}
}

// Incr records one completed frame.
func (p *Progress) Incr() {
	p.done.Add(1)
}

// Snapshot is a point-in-time view of a run.
type Snapshot struct {
	Total   int           `json:"total_frames"`
	Done    int           `json:"done_frames"`
	Percent float64       `json:"percent"`
	Elapsed time.Duration `json:"elapsed"`
}

// Snapshot returns the current state.
func (p *Progress) Snapshot() Snapshot {
	done := p.done.Load()
	s := Snapshot{
		Total:   int(p.total),
		Done:    int(done),
		Elapsed: time.Since(p.start),
	}
	if p.total > 0 {
		s.Percent = 100 * float64(done) / float64(p.total)
	}
	return s
}

const barWidth = 30

// Render writes a single-line terminal progress bar, prefixed with a
// carriage return so repeated calls redraw in place.
func (p *Progress) Render(w io.Writer) {
	s := p.Snapshot()
	filled := 0
	if s.Total > 0 {
		filled = barWidth * s.Done / s.Total
		if filled > barWidth {
			filled = barWidth
		}
	}
	bar := strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled)
	fmt.Fprintf(w, "\r[%s] %5.1f%% (%d/%d) %s",
		bar, s.Percent, s.Done, s.Total, s.Elapsed.Truncate(time.Second))
}
