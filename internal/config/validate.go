// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"

	"github.com/ManuGH/demark/internal/region"
)

// Validate checks everything that can be checked without knowing the video:
// kernel parity, patch positivity, worker count and schedule consistency.
func Validate(cfg Config) error {
	if cfg.BlurIntensity <= 0 || cfg.BlurIntensity%2 == 0 {
		return fmt.Errorf("%w: kernel size %d must be a positive odd integer", ErrInvalidBlurIntensity, cfg.BlurIntensity)
	}
	if cfg.PatchWidth <= 0 || cfg.PatchHeight <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidPatchDimensions, cfg.PatchWidth, cfg.PatchHeight)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", cfg.Workers)
	}
	if cfg.PreviewSeconds < 0 {
		return fmt.Errorf("preview seconds must be non-negative, got %g", cfg.PreviewSeconds)
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return nil
}

// ValidateForVideo checks the parts that depend on the probed geometry:
// the patch must fit inside the frame and every overlay slot must stay
// non-degenerate after clipping.
func ValidateForVideo(cfg Config, geo region.VideoGeometry) error {
	if cfg.PatchWidth > geo.Width || cfg.PatchHeight > geo.Height {
		return fmt.Errorf("%w: patch %dx%d exceeds frame %dx%d",
			ErrInvalidPatchDimensions, cfg.PatchWidth, cfg.PatchHeight, geo.Width, geo.Height)
	}
	if err := region.CheckFit(geo, cfg.Layout, cfg.PatchWidth, cfg.PatchHeight); err != nil {
		return fmt.Errorf("%w: %v", ErrGeometryOutOfBounds, err)
	}
	return nil
}
