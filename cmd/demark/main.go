// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// demark removes moving watermark overlays from screen-recorded videos by
// blurring the overlay region of every frame, following the position
// schedule the overlay cycles through, and remuxing the original audio.
//
// Usage:
//
//	demark [flags] input.mp4 [output.mp4]
//	demark -i input.mp4
//
// Exit codes:
//   - 0: success
//   - 1: processing or validation error
//   - 2: usage error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/ManuGH/demark/internal/api"
	"github.com/ManuGH/demark/internal/blur"
	"github.com/ManuGH/demark/internal/compose"
	"github.com/ManuGH/demark/internal/config"
	"github.com/ManuGH/demark/internal/log"
	"github.com/ManuGH/demark/internal/media"
	"github.com/ManuGH/demark/internal/pipeline"
	"github.com/ManuGH/demark/internal/region"
)

var Version = "dev"

type cliFlags struct {
	blur     int
	preview  float64
	advanced bool
	info     bool
	config   string
	workers  int
	listen   string
	version  bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var flags cliFlags
	fs := flag.NewFlagSet("demark", flag.ContinueOnError)
	fs.IntVar(&flags.blur, "blur", 0, "blur kernel size (positive odd integer)")
	fs.IntVar(&flags.blur, "b", 0, "blur kernel size (shorthand)")
	fs.Float64Var(&flags.preview, "preview", 0, "process only the first N seconds")
	fs.Float64Var(&flags.preview, "p", 0, "preview seconds (shorthand)")
	fs.BoolVar(&flags.advanced, "advanced", false, "edge-preserving filter chain (slower)")
	fs.BoolVar(&flags.advanced, "a", false, "advanced mode (shorthand)")
	fs.BoolVar(&flags.info, "info", false, "print video metadata and exit")
	fs.BoolVar(&flags.info, "i", false, "print video metadata and exit (shorthand)")
	fs.StringVar(&flags.config, "config", "", "path to YAML configuration file")
	fs.IntVar(&flags.workers, "workers", 0, "frame processing fan-out width")
	fs.StringVar(&flags.listen, "listen", "", "status listener address, e.g. 127.0.0.1:8686")
	fs.BoolVar(&flags.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if flags.version {
		fmt.Println(Version)
		return 0
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: input video is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  demark [flags] input.mp4 [output.mp4]")
		fmt.Fprintln(os.Stderr, "  demark -i input.mp4")
		return 2
	}
	input := fs.Arg(0)
	output := fs.Arg(1)
	if output == "" {
		output = defaultOutputPath(input)
	}

	log.Configure(log.Config{Service: "demark", Version: Version})
	logger := log.WithComponent("main")

	cfg, err := config.Load(flags.config)
	if err != nil {
		logger.Error().Err(err).Msg("configuration rejected")
		return 1
	}
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	}
	applyFlagOverrides(&cfg, fs, flags)
	if err := config.Validate(cfg); err != nil {
		logger.Error().Err(err).Msg("configuration rejected")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := process(ctx, cfg, flags, input, output); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn().Msg("interrupted")
		} else {
			logger.Error().Err(err).Msg("processing failed")
		}
		return 1
	}
	return 0
}

// applyFlagOverrides lets explicitly set CLI flags win over file and
// environment values.
func applyFlagOverrides(cfg *config.Config, fs *flag.FlagSet, flags cliFlags) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["blur"] || set["b"] {
		cfg.BlurIntensity = flags.blur
	}
	if set["advanced"] || set["a"] {
		cfg.Advanced = flags.advanced
	}
	if set["preview"] || set["p"] {
		cfg.PreviewSeconds = flags.preview
	}
	if set["workers"] {
		cfg.Workers = flags.workers
	}
	if set["listen"] {
		cfg.Listen = flags.listen
	}
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	return stem + "_clean.mp4"
}

func process(ctx context.Context, cfg config.Config, flags cliFlags, input, output string) error {
	logger := log.WithComponent("main")

	meta, err := media.Probe(ctx, cfg.FFprobePath, input)
	if err != nil {
		return err
	}

	if flags.info {
		printInfo(os.Stdout, input, meta, cfg)
		return nil
	}

	if err := config.ValidateForVideo(cfg, meta.Geometry()); err != nil {
		return err
	}

	frameLimit := 0
	if cfg.PreviewSeconds > 0 {
		frameLimit = int(math.Ceil(cfg.PreviewSeconds * meta.FPS))
	}

	src, err := media.OpenSource(input)
	if err != nil {
		return err
	}
	geo := src.Geometry()

	filter, err := blur.New(cfg.BlurIntensity, cfg.Advanced)
	if err != nil {
		src.Close()
		return err
	}
	comp, err := compose.New(compose.Params{
		Geometry:    geo,
		Layout:      cfg.Layout,
		Schedule:    cfg.Schedule,
		Filter:      filter,
		PatchWidth:  cfg.PatchWidth,
		PatchHeight: cfg.PatchHeight,
		Channels:    src.Channels(),
	})
	if err != nil {
		src.Close()
		return err
	}

	tmpVideo := output + ".video.tmp.mp4"
	sink, err := media.NewSink(tmpVideo, geo)
	if err != nil {
		src.Close()
		return err
	}
	defer os.Remove(tmpVideo)

	total := meta.FrameCount
	if frameLimit > 0 && frameLimit < total {
		total = frameLimit
	}
	progress := pipeline.NewProgress(total)

	runCtx := log.ContextWithRunID(ctx, uuid.NewString())
	state := newRunState()

	// The listener gets its own child context so finishing the run shuts
	// it down; runCtx alone only ends on SIGINT/SIGTERM.
	listenCtx, stopListener := context.WithCancel(runCtx)
	apiDone := startListener(listenCtx, cfg.Listen, input, output, state, progress)
	defer func() {
		stopListener()
		if apiDone != nil {
			<-apiDone
		}
	}()

	stopBar := renderProgress(progress)
	stats, err := pipeline.Run(runCtx, src, sink, comp, pipeline.Options{
		FrameLimit: frameLimit,
		Workers:    cfg.Workers,
		Progress:   progress,
	})
	stopBar()
	if err != nil {
		state.set(stateFailed)
		return err
	}

	if err := finishOutput(runCtx, cfg, meta, tmpVideo, input, output); err != nil {
		state.set(stateFailed)
		return err
	}
	state.set(stateDone)

	logger.Info().
		Str("output", output).
		Int("frames", stats.FramesProcessed).
		Dur("elapsed", stats.Elapsed).
		Msg("done")
	return nil
}

// finishOutput turns the processed video-only track into the final file.
// Sources with audio are always remuxed, previews included: the remux's
// -shortest flag trims the full-length audio to the capped video track.
func finishOutput(ctx context.Context, cfg config.Config, meta media.Metadata, tmpVideo, input, output string) error {
	if meta.HasAudio() {
		return media.MergeAudio(ctx, media.RemuxSpec{
			FFmpegBin:   cfg.FFmpegPath,
			VideoPath:   tmpVideo,
			AudioSource: input,
			OutputPath:  output,
		})
	}
	// Nothing to remux; the output keeps the frame encoder's settings
	// rather than the remux crf/preset, which only matters for silent
	// sources.
	if err := os.Rename(tmpVideo, output); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

const (
	stateRunning = "running"
	stateDone    = "done"
	stateFailed  = "failed"
)

// runState is the lifecycle phase reported on /status.
type runState struct {
	v atomic.Value
}

func newRunState() *runState {
	s := &runState{}
	s.v.Store(stateRunning)
	return s
}

func (s *runState) set(phase string) { s.v.Store(phase) }
func (s *runState) get() string      { return s.v.Load().(string) }

func statusFor(state *runState, input, output string, progress *pipeline.Progress) api.Status {
	return api.Status{
		State:    state.get(),
		Input:    input,
		Output:   output,
		Progress: progress.Snapshot(),
	}
}

// startListener runs the status API when an address is configured. The
// returned channel, if non-nil, closes once the listener has shut down.
func startListener(ctx context.Context, addr, input, output string, state *runState, progress *pipeline.Progress) <-chan struct{} {
	if addr == "" {
		return nil
	}
	srv := api.New(addr, func() api.Status {
		return statusFor(state, input, output, progress)
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Run(ctx); err != nil {
			logger := log.WithComponent("api")
			logger.Error().Err(err).Msg("status listener failed")
		}
	}()
	return done
}

// renderProgress redraws the terminal bar until the returned stop function
// is called.
func renderProgress(progress *pipeline.Progress) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				progress.Render(os.Stderr)
			case <-done:
				progress.Render(os.Stderr)
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func printInfo(w *os.File, input string, meta media.Metadata, cfg config.Config) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File\t%s\n", input)
	fmt.Fprintf(tw, "Resolution\t%dx%d\n", meta.Width, meta.Height)
	fmt.Fprintf(tw, "Orientation\t%s\n", meta.Orientation)
	fmt.Fprintf(tw, "Frame rate\t%.3f fps\n", meta.FPS)
	fmt.Fprintf(tw, "Duration\t%.2f s\n", meta.Duration)
	fmt.Fprintf(tw, "Frames\t%d\n", meta.FrameCount)
	fmt.Fprintf(tw, "Video codec\t%s\n", meta.VideoCodec)
	if meta.HasAudio() {
		fmt.Fprintf(tw, "Audio codec\t%s\n", meta.AudioCodec)
	} else {
		fmt.Fprintf(tw, "Audio codec\t(none)\n")
	}
	fmt.Fprintf(tw, "Overlay cycle\t%s\n", describeSchedule(cfg))
	tw.Flush()
}

func describeSchedule(cfg config.Config) string {
	s := cfg.Schedule
	if s.Model == region.ModelTimeInterval {
		return fmt.Sprintf("position change every %.1f s across 3 slots", s.IntervalSec)
	}
	return fmt.Sprintf("%d-frame cycle, slot changes at frames %d and %d",
		s.CycleFrames, s.Boundaries[0], s.Boundaries[1])
}
