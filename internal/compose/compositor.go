// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package compose blends a blurred copy of the active watermark rectangle
// back into each frame. It owns the per-run geometry and mask caches and is
// the only component that writes into frame buffers.
package compose

import (
	"fmt"
	"image"

	"github.com/ManuGH/demark/internal/blur"
	"github.com/ManuGH/demark/internal/mask"
	"github.com/ManuGH/demark/internal/region"
)

// Params wires a Compositor. Rects and Masks may be nil, in which case the
// compositor owns fresh caches for its lifetime.
type Params struct {
	Geometry region.VideoGeometry
	Layout   region.Layout
	Schedule region.Schedule
	Filter   blur.Filter

	PatchWidth  int
	PatchHeight int

	// Channels is the number of interleaved bytes per pixel in the frame
	// buffers (3 for RGB, 4 for RGBA).
	Channels int

	Rects *region.Cache
	Masks *mask.Cache
}

// Compositor mutates frames in place. It carries no per-frame state and is
// safe for concurrent Composite calls once constructed.
type Compositor struct {
	geo      region.VideoGeometry
	layout   region.Layout
	sched    region.Schedule
	filter   blur.Filter
	patchW   int
	patchH   int
	channels int
	rects    *region.Cache
	masks    *mask.Cache
}

// New validates the wiring and returns a ready compositor. Geometry that
// cannot hold the patch in every slot is rejected here, before any frame is
// touched.
func New(p Params) (*Compositor, error) {
	if p.Filter == nil {
		return nil, fmt.Errorf("compositor needs a filter")
	}
	if p.Channels != 3 && p.Channels != 4 {
		return nil, fmt.Errorf("unsupported channel count %d", p.Channels)
	}
	if err := p.Schedule.Validate(); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	if err := region.CheckFit(p.Geometry, p.Layout, p.PatchWidth, p.PatchHeight); err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	if p.Rects == nil {
		p.Rects = region.NewCache()
	}
	if p.Masks == nil {
		p.Masks = mask.NewCache()
	}
	return &Compositor{
		geo:      p.Geometry,
		layout:   p.Layout,
		sched:    p.Schedule,
		filter:   p.Filter,
		patchW:   p.PatchWidth,
		patchH:   p.PatchHeight,
		channels: p.Channels,
		rects:    p.Rects,
		masks:    p.Masks,
	}, nil
}

// Composite blurs the active watermark rectangle for frameIndex directly in
// pix and reports which slot was active. Pixels outside the rectangle are
// never written.
func (c *Compositor) Composite(pix []byte, frameIndex int) (region.Slot, error) {
	if want := c.geo.Width * c.geo.Height * c.channels; len(pix) != want {
		return 0, fmt.Errorf("frame %d: buffer is %d bytes, want %d", frameIndex, len(pix), want)
	}

	slot := c.sched.SlotAt(frameIndex, c.geo.FrameRate)
	rects := c.rects.Resolve(c.geo, c.layout, c.patchW, c.patchH)
	r := rects[slot]

	patch := c.extract(pix, r)
	filtered := c.filter.Apply(patch)
	c.blend(pix, r, patch, filtered)
	return slot, nil
}

// extract copies the rectangle into a standalone RGBA patch.
func (c *Compositor) extract(pix []byte, r region.Rect) *image.RGBA {
	patch := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	stride := c.geo.Width * c.channels
	for y := 0; y < r.H; y++ {
		src := (r.Y+y)*stride + r.X*c.channels
		dst := y * patch.Stride
		for x := 0; x < r.W; x++ {
			si := src + x*c.channels
			di := dst + x*4
			patch.Pix[di] = pix[si]
			patch.Pix[di+1] = pix[si+1]
			patch.Pix[di+2] = pix[si+2]
			if c.channels == 4 {
				patch.Pix[di+3] = pix[si+3]
			} else {
				patch.Pix[di+3] = 0xff
			}
		}
	}
	return patch
}

// blend writes filtered*(mask) + original*(1-mask) into the rectangle. The
// feather mask keeps the seam invisible; the alpha channel passes through
// untouched.
func (c *Compositor) blend(pix []byte, r region.Rect, original, filtered *image.RGBA) {
	m := c.masks.Get(r.W, r.H)
	stride := c.geo.Width * c.channels
	fb := filtered.Bounds()

	for y := 0; y < r.H; y++ {
		row := (r.Y+y)*stride + r.X*c.channels
		for x := 0; x < r.W; x++ {
			weight := m.At(y, x)
			if weight == 0 {
				continue
			}
			oi := y*original.Stride + x*4
			fi := filtered.PixOffset(fb.Min.X+x, fb.Min.Y+y)
			di := row + x*c.channels
			for ch := 0; ch < 3; ch++ {
				orig := float64(original.Pix[oi+ch])
				blurred := float64(filtered.Pix[fi+ch])
				pix[di+ch] = uint8(blurred*weight + orig*(1-weight) + 0.5)
			}
		}
	}
}
