// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/demark/internal/region"
)

// Load resolves the configuration with precedence ENV > file > defaults
// and statically validates the result. configPath may be empty.
func Load(configPath string) (Config, error) {
	cfg := Defaults()

	if configPath != "" {
		fileCfg, err := loadFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeFile(&cfg, fileCfg)
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile parses a YAML config file strictly: unknown keys fail with
// ErrUnknownConfigField.
func loadFile(path string) (FileConfig, error) {
	var fileCfg FileConfig

	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-provided
	if err != nil {
		return fileCfg, fmt.Errorf("read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fileCfg); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return fileCfg, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return fileCfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return fileCfg, nil
}

func mergeFile(cfg *Config, file FileConfig) {
	if file.BlurIntensity != nil {
		cfg.BlurIntensity = *file.BlurIntensity
	}
	if file.Advanced != nil {
		cfg.Advanced = *file.Advanced
	}
	if file.PatchWidth != nil {
		cfg.PatchWidth = *file.PatchWidth
	}
	if file.PatchHeight != nil {
		cfg.PatchHeight = *file.PatchHeight
	}
	if file.Workers != nil {
		cfg.Workers = *file.Workers
	}
	if file.PreviewSeconds != nil {
		cfg.PreviewSeconds = *file.PreviewSeconds
	}
	if file.FFmpegPath != nil {
		cfg.FFmpegPath = *file.FFmpegPath
	}
	if file.FFprobePath != nil {
		cfg.FFprobePath = *file.FFprobePath
	}
	if file.Listen != nil {
		cfg.Listen = *file.Listen
	}
	if file.LogLevel != nil {
		cfg.LogLevel = *file.LogLevel
	}
	if file.Layout != nil {
		cfg.Layout = *file.Layout
	}
	if file.Schedule != nil {
		mergeSchedule(&cfg.Schedule, *file.Schedule)
	}
}

func mergeSchedule(sched *region.Schedule, file ScheduleFile) {
	if file.Model != nil {
		sched.Model = region.Model(*file.Model)
	}
	if file.CycleFrames != nil {
		sched.CycleFrames = *file.CycleFrames
	}
	if len(file.Boundaries) == 2 {
		sched.Boundaries = [2]int{file.Boundaries[0], file.Boundaries[1]}
	}
	if file.IntervalSec != nil {
		sched.IntervalSec = *file.IntervalSec
	}
}

func applyEnv(cfg *Config) {
	cfg.BlurIntensity = ParseInt("DEMARK_BLUR_INTENSITY", cfg.BlurIntensity)
	cfg.Advanced = ParseBool("DEMARK_ADVANCED", cfg.Advanced)
	cfg.PatchWidth = ParseInt("DEMARK_PATCH_WIDTH", cfg.PatchWidth)
	cfg.PatchHeight = ParseInt("DEMARK_PATCH_HEIGHT", cfg.PatchHeight)
	cfg.Workers = ParseInt("DEMARK_WORKERS", cfg.Workers)
	cfg.PreviewSeconds = ParseFloat("DEMARK_PREVIEW_SECONDS", cfg.PreviewSeconds)
	cfg.FFmpegPath = ParseString("DEMARK_FFMPEG_PATH", cfg.FFmpegPath)
	cfg.FFprobePath = ParseString("DEMARK_FFPROBE_PATH", cfg.FFprobePath)
	cfg.Listen = ParseString("DEMARK_LISTEN", cfg.Listen)
	cfg.LogLevel = ParseString("DEMARK_LOG_LEVEL", cfg.LogLevel)
	cfg.Schedule.CycleFrames = ParseInt("DEMARK_CYCLE_FRAMES", cfg.Schedule.CycleFrames)
	cfg.Schedule.IntervalSec = ParseFloat("DEMARK_INTERVAL_SECONDS", cfg.Schedule.IntervalSec)
}
