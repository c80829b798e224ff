// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package region

import (
	"fmt"
	"math"
)

// Model selects how the watermark position cycle is driven.
type Model string

const (
	// ModelFrameCycle advances the slot on frame-count boundaries within a
	// repeating cycle of CycleFrames frames.
	ModelFrameCycle Model = "frames"
	// ModelTimeInterval rotates through the slots every IntervalSec seconds
	// of presentation time.
	ModelTimeInterval Model = "interval"
)

// Schedule is the versioned position schedule specification. Both cycle
// models observed in the wild are supported behind this one value; which
// numbers are canonical is a product decision, so everything here is
// configuration.
type Schedule struct {
	Model Model

	// Frame-count cycle parameters. Boundaries partition [0, CycleFrames)
	// into three contiguous runs: [0, Boundaries[0]) -> slot 0,
	// [Boundaries[0], Boundaries[1]) -> slot 1, the rest -> slot 2.
	CycleFrames int
	Boundaries  [2]int

	// Time-interval cycle parameter.
	IntervalSec float64
}

// DefaultSchedule returns the 227-frame cycle shipped by the most recent
// watermark variant: 66 frames top-left, 80 center-right, 81 bottom-left.
func DefaultSchedule() Schedule {
	return Schedule{
		Model:       ModelFrameCycle,
		CycleFrames: 227,
		Boundaries:  [2]int{66, 146},
		IntervalSec: 2.3,
	}
}

// Validate checks the schedule parameters for the selected model.
func (s Schedule) Validate() error {
	switch s.Model {
	case ModelFrameCycle:
		if s.CycleFrames <= 0 {
			return fmt.Errorf("cycle length must be positive, got %d", s.CycleFrames)
		}
		if s.Boundaries[0] <= 0 || s.Boundaries[1] <= s.Boundaries[0] || s.Boundaries[1] >= s.CycleFrames {
			return fmt.Errorf("boundaries %v must satisfy 0 < b0 < b1 < %d", s.Boundaries, s.CycleFrames)
		}
	case ModelTimeInterval:
		if s.IntervalSec <= 0 {
			return fmt.Errorf("interval must be positive, got %g", s.IntervalSec)
		}
	default:
		return fmt.Errorf("unknown schedule model %q", s.Model)
	}
	return nil
}

// SlotAt returns the active slot for the given frame index. Deterministic,
// stateless and O(1); for every non-negative index exactly one of the three
// slots is returned. fps is only consulted by the time-interval model.
func (s Schedule) SlotAt(frameIndex int, fps float64) Slot {
	switch s.Model {
	case ModelTimeInterval:
		if fps <= 0 || s.IntervalSec <= 0 {
			return SlotTopLeft
		}
		sec := float64(frameIndex) / fps
		return Slot(int(math.Floor(sec/s.IntervalSec)) % SlotCount)
	default:
		if s.CycleFrames <= 0 {
			return SlotTopLeft
		}
		pos := frameIndex % s.CycleFrames
		switch {
		case pos < s.Boundaries[0]:
			return SlotTopLeft
		case pos < s.Boundaries[1]:
			return SlotCenterRight
		default:
			return SlotBottomLeft
		}
	}
}
