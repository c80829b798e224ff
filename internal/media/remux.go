// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package media

import (
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/ManuGH/demark/internal/log"
	"github.com/ManuGH/demark/internal/procgroup"
)

// RemuxSpec describes the final merge step: take the processed video-only
// stream, the audio from the untouched source, and produce the output file.
type RemuxSpec struct {
	FFmpegBin   string
	VideoPath   string // processed, video-only
	AudioSource string // original input, audio donor
	OutputPath  string
}

// BuildRemuxArgs assembles the ffmpeg argument list. Near-lossless video
// (crf 18, preset slow) and high-bitrate AAC; the audio map is optional so
// sources without an audio stream still remux cleanly.
func BuildRemuxArgs(spec RemuxSpec) []string {
	return []string{
		"-y",
		"-i", spec.VideoPath,
		"-i", spec.AudioSource,
		"-map", "0:v:0",
		"-map", "1:a:0?",
		"-c:v", "libx264",
		"-crf", "18",
		"-preset", "slow",
		"-c:a", "aac",
		"-b:a", "320k",
		"-shortest",
		spec.OutputPath,
	}
}

// newRemuxCmd builds the supervised ffmpeg invocation: the child runs in
// its own process group and context cancellation terminates the whole
// group, with a hard-kill fallback if the group ignores SIGTERM.
func newRemuxCmd(ctx context.Context, spec RemuxSpec) *exec.Cmd {
	bin := spec.FFmpegBin
	if bin == "" {
		bin = "ffmpeg"
	}
	// #nosec G204 -- binary path and file paths come from operator flags
	cmd := exec.CommandContext(ctx, bin, BuildRemuxArgs(spec)...)
	procgroup.Set(cmd)
	cmd.Cancel = func() error { return procgroup.Kill(cmd, syscall.SIGTERM) }
	cmd.WaitDelay = 5 * time.Second
	return cmd
}

// MergeAudio runs the ffmpeg remux as a supervised child process. On
// failure the stderr tail is attached to the returned error and the log.
func MergeAudio(ctx context.Context, spec RemuxSpec) error {
	logger := log.WithComponentFromContext(ctx, "remux")

	ring := NewLineRing(64)
	cmd := newRemuxCmd(ctx, spec)
	cmd.Stderr = ring

	logger.Debug().
		Str("event", "remux.start").
		Str("video", spec.VideoPath).
		Str("audio_source", spec.AudioSource).
		Str("output", spec.OutputPath).
		Msg("starting ffmpeg remux")

	if err := cmd.Run(); err != nil {
		tail := ring.LastN(10)
		logger.Error().
			Err(err).
			Str("event", "remux.failed").
			Strs("stderr", tail).
			Msg("ffmpeg remux failed")
		return fmt.Errorf("%w: ffmpeg remux: %v (stderr: %s)", ErrSinkUnwritable, err, lastLine(tail))
	}

	logger.Info().
		Str("event", "remux.done").
		Str("output", spec.OutputPath).
		Msg("audio track reattached")
	return nil
}

func lastLine(lines []string) string {
	if len(lines) == 0 {
		return "<empty>"
	}
	return lines[len(lines)-1]
}
