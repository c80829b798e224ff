// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package region computes where the watermark sits in a given frame: the
// three admissible screen rectangles and the cyclic schedule that selects
// one of them per frame index.
package region

import "fmt"

// VideoGeometry describes the dimensions and timing of the video being
// processed. It is produced once by the metadata probe and consumed
// read-only everywhere else.
type VideoGeometry struct {
	Width      int
	Height     int
	FrameRate  float64
	FrameCount int
}

// Slot identifies one of the three admissible watermark screen positions.
type Slot int

const (
	SlotTopLeft     Slot = 0
	SlotCenterRight Slot = 1
	SlotBottomLeft  Slot = 2

	// SlotCount is the fixed cardinality of the position cycle.
	SlotCount = 3
)

func (s Slot) String() string {
	switch s {
	case SlotTopLeft:
		return "top-left"
	case SlotCenterRight:
		return "center-right"
	case SlotBottomLeft:
		return "bottom-left"
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// Rect is an axis-aligned pixel rectangle. A resolved Rect always satisfies
// 0 <= X, 0 <= Y, X+W <= frame width and Y+H <= frame height.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Empty reports whether the rectangle has no area left after clipping.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Layout carries the pixel offsets that place the watermark patch in each
// slot. The exact numbers differ between product versions, so they are an
// explicit value instead of package constants.
type Layout struct {
	TopLeftX     int `yaml:"top_left_x"`
	TopLeftY     int `yaml:"top_left_y"`
	RightMargin  int `yaml:"right_margin"`
	CenterRightY int `yaml:"center_right_y"`
	BottomLeftX  int `yaml:"bottom_left_x"`
	BottomOffset int `yaml:"bottom_offset"`
}

// DefaultLayout returns the offsets used by the current watermark variant.
func DefaultLayout() Layout {
	return Layout{
		TopLeftX:     20,
		TopLeftY:     75,
		RightMargin:  10,
		CenterRightY: 592,
		BottomLeftX:  25,
		BottomOffset: 260,
	}
}

// Resolve computes the three watermark rectangles for the given video
// geometry, layout and patch size. It is pure and total: rectangles that
// would extend past the frame are clipped to the frame boundary, never
// rejected. Callers that need a fit guarantee use CheckFit.
func Resolve(geo VideoGeometry, layout Layout, patchW, patchH int) [SlotCount]Rect {
	raw := [SlotCount]Rect{
		{X: layout.TopLeftX, Y: layout.TopLeftY, W: patchW, H: patchH},
		{X: geo.Width - patchW - layout.RightMargin, Y: layout.CenterRightY, W: patchW, H: patchH},
		{X: layout.BottomLeftX, Y: geo.Height - layout.BottomOffset, W: patchW, H: patchH},
	}

	var out [SlotCount]Rect
	for i, r := range raw {
		out[i] = clip(r, geo.Width, geo.Height)
	}
	return out
}

// CheckFit verifies that every resolved rectangle keeps a positive area
// inside the frame. A failure means no valid blend is possible for at least
// one slot, which is a configuration error, not a per-frame condition.
func CheckFit(geo VideoGeometry, layout Layout, patchW, patchH int) error {
	rects := Resolve(geo, layout, patchW, patchH)
	for i, r := range rects {
		if r.Empty() {
			return fmt.Errorf("slot %s: rectangle degenerates to %dx%d inside %dx%d frame",
				Slot(i), r.W, r.H, geo.Width, geo.Height)
		}
	}
	return nil
}

func clip(r Rect, width, height int) Rect {
	if r.X < 0 {
		r.W += r.X
		r.X = 0
	}
	if r.Y < 0 {
		r.H += r.Y
		r.Y = 0
	}
	if r.X > width {
		r.X = width
	}
	if r.Y > height {
		r.Y = height
	}
	if r.X+r.W > width {
		r.W = width - r.X
	}
	if r.Y+r.H > height {
		r.H = height - r.Y
	}
	if r.W < 0 {
		r.W = 0
	}
	if r.H < 0 {
		r.H = 0
	}
	return r
}
