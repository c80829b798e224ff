// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/demark/internal/region"
)

func TestValidateBlurIntensity(t *testing.T) {
	reject := []int{0, -3, 2, 50, 52}
	for _, k := range reject {
		t.Run(fmt.Sprintf("reject_%d", k), func(t *testing.T) {
			cfg := Defaults()
			cfg.BlurIntensity = k
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBlurIntensity)
		})
	}

	accept := []int{1, 51, 75, 101}
	for _, k := range accept {
		t.Run(fmt.Sprintf("accept_%d", k), func(t *testing.T) {
			cfg := Defaults()
			cfg.BlurIntensity = k
			assert.NoError(t, Validate(cfg))
		})
	}
}

func TestValidatePatchDimensions(t *testing.T) {
	cfg := Defaults()
	cfg.PatchWidth = 0
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPatchDimensions)

	cfg = Defaults()
	cfg.PatchHeight = -5
	assert.ErrorIs(t, Validate(cfg), ErrInvalidPatchDimensions)
}

func TestValidateWorkersAndPreview(t *testing.T) {
	cfg := Defaults()
	cfg.Workers = -1
	assert.Error(t, Validate(cfg))

	// Zero workers means sequential, not invalid.
	cfg = Defaults()
	cfg.Workers = 0
	assert.NoError(t, Validate(cfg))

	cfg = Defaults()
	cfg.PreviewSeconds = -1
	assert.Error(t, Validate(cfg))
}

func TestValidateSchedule(t *testing.T) {
	cfg := Defaults()
	cfg.Schedule.Boundaries = [2]int{146, 66}
	err := Validate(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestValidateForVideo(t *testing.T) {
	cfg := Defaults()

	// Full HD fits the stock layout.
	assert.NoError(t, ValidateForVideo(cfg, region.VideoGeometry{Width: 1920, Height: 1080}))

	// Patch wider than the frame.
	err := ValidateForVideo(cfg, region.VideoGeometry{Width: 100, Height: 1080})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPatchDimensions)

	// Frame too short for the center-right slot at y=592.
	err = ValidateForVideo(cfg, region.VideoGeometry{Width: 1920, Height: 200})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeometryOutOfBounds)
}
