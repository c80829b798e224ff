// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads and validates the tool configuration with strict
// precedence: environment variables override file values, file values
// override built-in defaults. YAML files are parsed strictly; an unknown
// key is an error, not a silent no-op.
package config

import "github.com/ManuGH/demark/internal/region"

// Config is the fully resolved runtime configuration.
type Config struct {
	// BlurIntensity is the Gaussian kernel size. Must be a positive odd
	// integer; larger values blur harder.
	BlurIntensity int

	// Advanced switches to the edge-preserving filter chain (bilateral
	// pass followed by two Gaussian passes).
	Advanced bool

	// PatchWidth and PatchHeight are the dimensions of the region blurred
	// at each overlay slot.
	PatchWidth  int
	PatchHeight int

	// Workers is the composite fan-out width. 0 or 1 runs sequentially.
	Workers int

	// PreviewSeconds caps processing to the first N seconds of video.
	// 0 processes everything.
	PreviewSeconds float64

	// FFmpegPath and FFprobePath name the external binaries, resolved via
	// PATH unless absolute.
	FFmpegPath  string
	FFprobePath string

	// Listen enables the status HTTP listener when non-empty,
	// e.g. "127.0.0.1:8686".
	Listen string

	// LogLevel overrides the default "info" level ("debug", "warn", ...).
	LogLevel string

	Layout   region.Layout
	Schedule region.Schedule
}

// ScheduleFile is the YAML shape of the position schedule. Pointer fields
// so that absent keys keep their defaults.
type ScheduleFile struct {
	Model       *string  `yaml:"model"`
	CycleFrames *int     `yaml:"cycle_frames"`
	Boundaries  []int    `yaml:"boundaries"`
	IntervalSec *float64 `yaml:"interval_seconds"`
}

// FileConfig is the YAML shape of the top-level configuration. All fields
// are pointers; only keys present in the file override defaults.
type FileConfig struct {
	BlurIntensity  *int           `yaml:"blur_intensity"`
	Advanced       *bool          `yaml:"advanced"`
	PatchWidth     *int           `yaml:"patch_width"`
	PatchHeight    *int           `yaml:"patch_height"`
	Workers        *int           `yaml:"workers"`
	PreviewSeconds *float64       `yaml:"preview_seconds"`
	FFmpegPath     *string        `yaml:"ffmpeg_path"`
	FFprobePath    *string        `yaml:"ffprobe_path"`
	Listen         *string        `yaml:"listen"`
	LogLevel       *string        `yaml:"log_level"`
	Layout         *region.Layout `yaml:"layout"`
	Schedule       *ScheduleFile  `yaml:"schedule"`
}

// Defaults returns the built-in configuration: the stock overlay layout,
// the 227-frame position cycle and a 51-pixel Gaussian kernel over a
// 139x51 patch.
func Defaults() Config {
	return Config{
		BlurIntensity: 51,
		PatchWidth:    139,
		PatchHeight:   51,
		FFmpegPath:    "ffmpeg",
		FFprobePath:   "ffprobe",
		Layout:        region.DefaultLayout(),
		Schedule:      region.DefaultSchedule(),
	}
}
