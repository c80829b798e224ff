// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package compose

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/demark/internal/blur"
	"github.com/ManuGH/demark/internal/mask"
	"github.com/ManuGH/demark/internal/region"
)

func testGeometry() region.VideoGeometry {
	return region.VideoGeometry{Width: 1920, Height: 1080, FrameRate: 30, FrameCount: 900}
}

func newTestCompositor(t *testing.T, channels int) *Compositor {
	t.Helper()
	filter, err := blur.New(9, false)
	require.NoError(t, err)

	comp, err := New(Params{
		Geometry:    testGeometry(),
		Layout:      region.DefaultLayout(),
		Schedule:    region.DefaultSchedule(),
		Filter:      filter,
		PatchWidth:  139,
		PatchHeight: 51,
		Channels:    channels,
	})
	require.NoError(t, err)
	return comp
}

func noisyFrame(geo region.VideoGeometry, channels int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]byte, geo.Width*geo.Height*channels)
	for i := range pix {
		pix[i] = byte(rng.Intn(256))
	}
	return pix
}

func TestCompositeBlendLocality(t *testing.T) {
	comp := newTestCompositor(t, 4)
	geo := testGeometry()

	for _, frameIndex := range []int{0, 70, 150} {
		pix := noisyFrame(geo, 4, int64(frameIndex))
		before := append([]byte(nil), pix...)

		slot, err := comp.Composite(pix, frameIndex)
		require.NoError(t, err)

		r := region.Resolve(geo, region.DefaultLayout(), 139, 51)[slot]
		stride := geo.Width * 4
		for y := 0; y < geo.Height; y++ {
			for x := 0; x < geo.Width; x++ {
				inside := x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
				if inside {
					continue
				}
				i := y*stride + x*4
				if pix[i] != before[i] || pix[i+1] != before[i+1] || pix[i+2] != before[i+2] || pix[i+3] != before[i+3] {
					t.Fatalf("frame %d: pixel (%d,%d) outside %+v changed", frameIndex, x, y, r)
				}
			}
		}
	}
}

func TestCompositeChangesInterior(t *testing.T) {
	comp := newTestCompositor(t, 4)
	geo := testGeometry()

	pix := noisyFrame(geo, 4, 42)
	before := append([]byte(nil), pix...)

	slot, err := comp.Composite(pix, 0)
	require.NoError(t, err)
	assert.Equal(t, region.SlotTopLeft, slot)

	// The rectangle interior of a noisy frame must have been smoothed.
	r := region.Resolve(geo, region.DefaultLayout(), 139, 51)[slot]
	changed := 0
	stride := geo.Width * 4
	for y := r.Y + 10; y < r.Y+r.H-10; y++ {
		for x := r.X + 10; x < r.X+r.W-10; x++ {
			i := y*stride + x*4
			if pix[i] != before[i] {
				changed++
			}
		}
	}
	assert.Greater(t, changed, (r.W-20)*(r.H-20)/2, "interior mostly untouched")
}

func TestCompositeSlotSequence(t *testing.T) {
	comp := newTestCompositor(t, 4)
	geo := testGeometry()

	expect := map[int]region.Slot{
		0:   region.SlotTopLeft,
		70:  region.SlotCenterRight,
		150: region.SlotBottomLeft,
		227: region.SlotTopLeft,
	}
	for frameIndex, want := range expect {
		pix := noisyFrame(geo, 4, 7)
		slot, err := comp.Composite(pix, frameIndex)
		require.NoError(t, err)
		assert.Equal(t, want, slot, "frame %d", frameIndex)
	}
}

func TestCompositeCycleRestartMatchesFrameZero(t *testing.T) {
	comp := newTestCompositor(t, 4)
	geo := testGeometry()

	a := noisyFrame(geo, 4, 9)
	b := append([]byte(nil), a...)

	_, err := comp.Composite(a, 0)
	require.NoError(t, err)
	_, err = comp.Composite(b, 227)
	require.NoError(t, err)

	assert.Equal(t, a, b, "frame 227 must blur the same rectangle as frame 0")
}

func TestCompositeThreeChannelFrames(t *testing.T) {
	comp := newTestCompositor(t, 3)
	geo := testGeometry()

	pix := noisyFrame(geo, 3, 11)
	before := append([]byte(nil), pix...)

	slot, err := comp.Composite(pix, 0)
	require.NoError(t, err)

	r := region.Resolve(geo, region.DefaultLayout(), 139, 51)[slot]
	stride := geo.Width * 3
	for y := 0; y < geo.Height; y++ {
		rowInside := y >= r.Y && y < r.Y+r.H
		for x := 0; x < geo.Width; x++ {
			if rowInside && x >= r.X && x < r.X+r.W {
				continue
			}
			i := y*stride + x*3
			require.Equal(t, before[i], pix[i], "pixel (%d,%d)", x, y)
		}
	}
}

func TestCompositeRejectsWrongBufferSize(t *testing.T) {
	comp := newTestCompositor(t, 4)
	_, err := comp.Composite(make([]byte, 10), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer")
}

func TestNewRejectsBadWiring(t *testing.T) {
	filter, err := blur.New(9, false)
	require.NoError(t, err)

	base := Params{
		Geometry:    testGeometry(),
		Layout:      region.DefaultLayout(),
		Schedule:    region.DefaultSchedule(),
		Filter:      filter,
		PatchWidth:  139,
		PatchHeight: 51,
		Channels:    4,
	}

	missing := base
	missing.Filter = nil
	_, err = New(missing)
	assert.Error(t, err)

	channels := base
	channels.Channels = 2
	_, err = New(channels)
	assert.Error(t, err)

	sched := base
	sched.Schedule = region.Schedule{Model: region.ModelFrameCycle, CycleFrames: -1}
	_, err = New(sched)
	assert.Error(t, err)

	tiny := base
	tiny.Geometry = region.VideoGeometry{Width: 100, Height: 100, FrameRate: 30}
	tiny.PatchWidth = 500
	tiny.PatchHeight = 500
	_, err = New(tiny)
	assert.Error(t, err)
}

func TestCompositorSharesCaches(t *testing.T) {
	rects := region.NewCache()
	masks := mask.NewCache()
	filter, err := blur.New(9, false)
	require.NoError(t, err)

	comp, err := New(Params{
		Geometry:    testGeometry(),
		Layout:      region.DefaultLayout(),
		Schedule:    region.DefaultSchedule(),
		Filter:      filter,
		PatchWidth:  139,
		PatchHeight: 51,
		Channels:    4,
		Rects:       rects,
		Masks:       masks,
	})
	require.NoError(t, err)

	pix := noisyFrame(testGeometry(), 4, 1)
	_, err = comp.Composite(pix, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, rects.Len())
	assert.Equal(t, 1, masks.Len())
}
