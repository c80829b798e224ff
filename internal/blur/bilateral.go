// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package blur

import (
	"image"
	"math"
)

// bilateral is the edge-aware advanced mode: one bilateral pass keeps
// strong gradients intact, then two Gaussian passes flatten what remains.
type bilateral struct {
	gaussian

	diameter   int
	sigmaColor float64
	sigmaSpace float64
}

func (b bilateral) Apply(patch *image.RGBA) *image.RGBA {
	out := b.bilateralPass(patch)
	out = b.gaussian.Apply(out)
	return b.gaussian.Apply(out)
}

func (b bilateral) Name() string { return "bilateral+gaussian" }

func (b bilateral) bilateralPass(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	radius := b.diameter / 2
	spatial := spatialKernel(radius, b.sigmaSpace)
	colorWeight := colorLUT(b.sigmaColor)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ci := src.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			cr := float64(src.Pix[ci])
			cg := float64(src.Pix[ci+1])
			cb := float64(src.Pix[ci+2])

			var sumR, sumG, sumB, sumW float64
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					ni := src.PixOffset(bounds.Min.X+nx, bounds.Min.Y+ny)
					nr := float64(src.Pix[ni])
					ng := float64(src.Pix[ni+1])
					nb := float64(src.Pix[ni+2])

					diff := int(math.Abs(nr-cr) + math.Abs(ng-cg) + math.Abs(nb-cb))
					weight := spatial[(dy+radius)*(2*radius+1)+(dx+radius)] * colorWeight[diff]

					sumR += nr * weight
					sumG += ng * weight
					sumB += nb * weight
					sumW += weight
				}
			}

			di := dst.PixOffset(x, y)
			dst.Pix[di] = clampByte(sumR / sumW)
			dst.Pix[di+1] = clampByte(sumG / sumW)
			dst.Pix[di+2] = clampByte(sumB / sumW)
			dst.Pix[di+3] = src.Pix[ci+3]
		}
	}
	return dst
}

func spatialKernel(radius int, sigma float64) []float64 {
	side := 2*radius + 1
	kernel := make([]float64, side*side)
	denom := 2 * sigma * sigma
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			dist := float64(dx*dx + dy*dy)
			kernel[(dy+radius)*side+(dx+radius)] = math.Exp(-dist / denom)
		}
	}
	return kernel
}

// colorLUT precomputes the range weight for every possible summed RGB
// distance (0..765).
func colorLUT(sigma float64) []float64 {
	lut := make([]float64, 3*255+1)
	denom := 2 * sigma * sigma
	for d := range lut {
		lut[d] = math.Exp(-float64(d*d) / denom)
	}
	return lut
}

func clampByte(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v + 0.5)
}
