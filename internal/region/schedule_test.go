// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameCyclePartition(t *testing.T) {
	s := DefaultSchedule()
	require.NoError(t, s.Validate())

	var counts [SlotCount]int
	for f := 0; f < s.CycleFrames; f++ {
		slot := s.SlotAt(f, 30)
		require.GreaterOrEqual(t, int(slot), 0)
		require.Less(t, int(slot), SlotCount)
		counts[slot]++
	}

	assert.Equal(t, [SlotCount]int{66, 80, 81}, counts)
}

func TestFrameCyclePeriodicity(t *testing.T) {
	s := DefaultSchedule()
	for f := 0; f < 3*s.CycleFrames; f++ {
		assert.Equal(t, s.SlotAt(f, 30), s.SlotAt(f+s.CycleFrames, 30), "frame %d", f)
	}
}

func TestFrameCycleKnownFrames(t *testing.T) {
	s := DefaultSchedule()

	assert.Equal(t, SlotTopLeft, s.SlotAt(0, 30))
	assert.Equal(t, SlotTopLeft, s.SlotAt(65, 30))
	assert.Equal(t, SlotCenterRight, s.SlotAt(66, 30))
	assert.Equal(t, SlotCenterRight, s.SlotAt(70, 30))
	assert.Equal(t, SlotCenterRight, s.SlotAt(145, 30))
	assert.Equal(t, SlotBottomLeft, s.SlotAt(146, 30))
	assert.Equal(t, SlotBottomLeft, s.SlotAt(150, 30))
	assert.Equal(t, SlotBottomLeft, s.SlotAt(226, 30))
	assert.Equal(t, SlotTopLeft, s.SlotAt(227, 30))
}

func TestTimeIntervalModel(t *testing.T) {
	s := Schedule{Model: ModelTimeInterval, IntervalSec: 2.3}
	require.NoError(t, s.Validate())

	fps := 30.0
	assert.Equal(t, SlotTopLeft, s.SlotAt(0, fps))
	// 2.3s at 30fps is frame 69; frame 68 is still in the first interval.
	assert.Equal(t, SlotTopLeft, s.SlotAt(68, fps))
	assert.Equal(t, SlotCenterRight, s.SlotAt(69, fps))
	// 4.6s -> frame 138 starts the third interval.
	assert.Equal(t, SlotBottomLeft, s.SlotAt(138, fps))
	// 6.9s -> frame 207 wraps back to the first slot.
	assert.Equal(t, SlotTopLeft, s.SlotAt(207, fps))
}

func TestTimeIntervalTotality(t *testing.T) {
	s := Schedule{Model: ModelTimeInterval, IntervalSec: 2.5}
	for f := 0; f < 10000; f++ {
		slot := s.SlotAt(f, 29.97)
		require.GreaterOrEqual(t, int(slot), 0)
		require.Less(t, int(slot), SlotCount)
	}
}

func TestScheduleValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Schedule
		wantErr bool
	}{
		{"default", DefaultSchedule(), false},
		{"interval", Schedule{Model: ModelTimeInterval, IntervalSec: 2.5}, false},
		{"zero cycle", Schedule{Model: ModelFrameCycle, CycleFrames: 0, Boundaries: [2]int{1, 2}}, true},
		{"boundary order", Schedule{Model: ModelFrameCycle, CycleFrames: 227, Boundaries: [2]int{146, 66}}, true},
		{"boundary past cycle", Schedule{Model: ModelFrameCycle, CycleFrames: 100, Boundaries: [2]int{66, 146}}, true},
		{"zero boundary", Schedule{Model: ModelFrameCycle, CycleFrames: 227, Boundaries: [2]int{0, 146}}, true},
		{"zero interval", Schedule{Model: ModelTimeInterval, IntervalSec: 0}, true},
		{"unknown model", Schedule{Model: Model("wall-clock")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
