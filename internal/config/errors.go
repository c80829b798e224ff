// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "errors"

var (
	// ErrUnknownConfigField classifies strict YAML parse failures caused by
	// unknown keys. Use errors.Is(err, ErrUnknownConfigField) instead of
	// string matching.
	ErrUnknownConfigField = errors.New("unknown config field")

	// ErrInvalidBlurIntensity marks a blur kernel size that is not a
	// positive odd integer.
	ErrInvalidBlurIntensity = errors.New("invalid blur intensity")

	// ErrInvalidPatchDimensions marks a patch that is non-positive or does
	// not fit inside the video frame.
	ErrInvalidPatchDimensions = errors.New("invalid patch dimensions")

	// ErrInvalidSchedule marks a position schedule whose parameters are
	// inconsistent for the selected model.
	ErrInvalidSchedule = errors.New("invalid position schedule")

	// ErrGeometryOutOfBounds marks a layout that leaves at least one overlay
	// slot degenerate for the probed video geometry.
	ErrGeometryOutOfBounds = errors.New("overlay geometry out of bounds")
)
