// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/demark/internal/config"
	"github.com/ManuGH/demark/internal/media"
	"github.com/ManuGH/demark/internal/pipeline"
	"github.com/ManuGH/demark/internal/region"
)

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "video_clean.mp4", defaultOutputPath("video.mp4"))
	assert.Equal(t, "clips/rec_clean.mp4", defaultOutputPath("clips/rec.mov"))
	assert.Equal(t, "noext_clean.mp4", defaultOutputPath("noext"))
}

func TestRunUsageErrors(t *testing.T) {
	assert.Equal(t, 2, run([]string{}))
	assert.Equal(t, 2, run([]string{"--no-such-flag"}))
}

func TestRunVersion(t *testing.T) {
	assert.Equal(t, 0, run([]string{"--version"}))
}

func TestApplyFlagOverrides(t *testing.T) {
	var flags cliFlags
	fs := flag.NewFlagSet("demark", flag.ContinueOnError)
	fs.IntVar(&flags.blur, "blur", 0, "")
	fs.IntVar(&flags.blur, "b", 0, "")
	fs.BoolVar(&flags.advanced, "advanced", false, "")
	fs.BoolVar(&flags.advanced, "a", false, "")
	fs.IntVar(&flags.workers, "workers", 0, "")
	fs.StringVar(&flags.listen, "listen", "", "")
	require.NoError(t, fs.Parse([]string{"-b", "75", "-a", "--workers", "4"}))

	cfg := config.Defaults()
	applyFlagOverrides(&cfg, fs, flags)

	assert.Equal(t, 75, cfg.BlurIntensity)
	assert.True(t, cfg.Advanced)
	assert.Equal(t, 4, cfg.Workers)
	// Untouched flags keep the loaded values.
	assert.Empty(t, cfg.Listen)
	assert.Equal(t, 139, cfg.PatchWidth)
}

func TestListenerStopsAfterRunFinishes(t *testing.T) {
	ctx, stopListener := context.WithCancel(context.Background())
	state := newRunState()
	progress := pipeline.NewProgress(10)

	apiDone := startListener(ctx, "127.0.0.1:0", "in.mp4", "out.mp4", state, progress)
	require.NotNil(t, apiDone)

	// Ending the run must release the wait; only a signal used to.
	stopListener()
	select {
	case <-apiDone:
	case <-time.After(5 * time.Second):
		t.Fatal("status listener did not shut down after the run finished")
	}
}

func TestStartListenerDisabledWithoutAddress(t *testing.T) {
	done := startListener(context.Background(), "", "in.mp4", "out.mp4", newRunState(), pipeline.NewProgress(0))
	assert.Nil(t, done)
}

func TestFinishOutputRemuxesPreviewWithAudio(t *testing.T) {
	dir := t.TempDir()
	tmpVideo := filepath.Join(dir, "out.mp4.video.tmp.mp4")
	output := filepath.Join(dir, "out.mp4")
	require.NoError(t, os.WriteFile(tmpVideo, []byte("frames"), 0o600))

	cfg := config.Defaults()
	cfg.FFmpegPath = "true"
	meta := media.Metadata{AudioCodec: "aac"}

	// Capped runs go through the remux as well; -shortest trims the
	// audio to the video length.
	require.NoError(t, finishOutput(context.Background(), cfg, meta, tmpVideo, "in.mp4", output))

	_, err := os.Stat(tmpVideo)
	assert.NoError(t, err, "remux must not consume the temp track itself")
}

func TestFinishOutputRenamesWhenNoAudio(t *testing.T) {
	dir := t.TempDir()
	tmpVideo := filepath.Join(dir, "out.mp4.video.tmp.mp4")
	output := filepath.Join(dir, "out.mp4")
	require.NoError(t, os.WriteFile(tmpVideo, []byte("frames"), 0o600))

	cfg := config.Defaults()
	meta := media.Metadata{}

	require.NoError(t, finishOutput(context.Background(), cfg, meta, tmpVideo, "in.mp4", output))

	_, err := os.Stat(output)
	assert.NoError(t, err)
	_, err = os.Stat(tmpVideo)
	assert.True(t, os.IsNotExist(err))
}

func TestStatusReflectsRunState(t *testing.T) {
	state := newRunState()
	progress := pipeline.NewProgress(4)

	got := statusFor(state, "in.mp4", "out.mp4", progress)
	assert.Equal(t, stateRunning, got.State)
	assert.Equal(t, "in.mp4", got.Input)

	state.set(stateDone)
	assert.Equal(t, stateDone, statusFor(state, "in.mp4", "out.mp4", progress).State)

	state.set(stateFailed)
	assert.Equal(t, stateFailed, statusFor(state, "in.mp4", "out.mp4", progress).State)
}

func TestDescribeSchedule(t *testing.T) {
	cfg := config.Defaults()
	assert.Equal(t, "227-frame cycle, slot changes at frames 66 and 146", describeSchedule(cfg))

	cfg.Schedule.Model = region.ModelTimeInterval
	cfg.Schedule.IntervalSec = 2.3
	assert.Equal(t, "position change every 2.3 s across 3 slots", describeSchedule(cfg))
}
