// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package blur provides the smoothing filters applied to the watermark
// patch. The standard filter is an isotropic Gaussian; the advanced filter
// adds an edge-preserving bilateral pass so strong gradients survive the
// smoothing at a higher compute cost. Both share one contract: same patch
// shape in, same patch shape out.
package blur

import (
	"fmt"
	"image"

	bildblur "github.com/anthonynsimon/bild/blur"
)

// Filter smooths a pixel patch in place of the watermark. Implementations
// are stateless and safe for concurrent use.
type Filter interface {
	// Apply returns a filtered copy of the patch with identical bounds.
	Apply(patch *image.RGBA) *image.RGBA
	// Name identifies the filter mode for logs.
	Name() string
}

// New selects the filter for the given configuration. kernel is the blur
// kernel size and must be a positive odd number; config validation enforces
// that before any frame is processed, the constructor just refuses to build
// a filter from a value that slipped past it.
func New(kernel int, advanced bool) (Filter, error) {
	if kernel <= 0 || kernel%2 == 0 {
		return nil, fmt.Errorf("blur kernel must be a positive odd number, got %d", kernel)
	}
	g := gaussian{radius: kernelRadius(kernel)}
	if advanced {
		return bilateral{
			gaussian:   g,
			diameter:   9,
			sigmaColor: 75,
			sigmaSpace: 75,
		}, nil
	}
	return g, nil
}

// kernelRadius maps an odd kernel size to the Gaussian radius the bild
// implementation expects.
func kernelRadius(kernel int) float64 {
	return float64(kernel-1) / 2
}

type gaussian struct {
	radius float64
}

func (g gaussian) Apply(patch *image.RGBA) *image.RGBA {
	return bildblur.Gaussian(patch, g.radius)
}

func (g gaussian) Name() string { return "gaussian" }
