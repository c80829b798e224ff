// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ManuGH/demark/internal/region"
)

// Metadata is the probe result. The compositing core consumes only
// width/height/fps/frame count; the rest feeds the --info display.
type Metadata struct {
	Width       int
	Height      int
	FPS         float64
	FrameCount  int
	Duration    float64
	Orientation string
	VideoCodec  string
	AudioCodec  string
}

// Geometry converts the probe result into the core's geometry value.
func (m Metadata) Geometry() region.VideoGeometry {
	return region.VideoGeometry{
		Width:      m.Width,
		Height:     m.Height,
		FrameRate:  m.FPS,
		FrameCount: m.FrameCount,
	}
}

// HasAudio reports whether the source carries an audio stream to remux.
func (m Metadata) HasAudio() bool {
	return m.AudioCodec != ""
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe runs ffprobe against the source file and extracts the stream
// metadata independent of decoding any frames.
func Probe(ctx context.Context, ffprobeBin, path string) (Metadata, error) {
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	// #nosec G204 -- binary path and input file come from operator flags
	cmd := exec.CommandContext(ctx, ffprobeBin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: ffprobe %s: %v", ErrSourceUnreadable, path, err)
	}
	return parseProbeOutput(output)
}

func parseProbeOutput(output []byte) (Metadata, error) {
	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return Metadata{}, fmt.Errorf("%w: parse ffprobe output: %v", ErrSourceUnreadable, err)
	}

	meta := Metadata{}
	if parsed.Format.Duration != "" {
		meta.Duration, _ = strconv.ParseFloat(parsed.Format.Duration, 64)
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if meta.VideoCodec != "" {
				continue // first video stream wins
			}
			meta.VideoCodec = s.CodecName
			meta.Width = s.Width
			meta.Height = s.Height
			meta.FPS = parseFrameRate(s.RFrameRate)
			if s.NbFrames != "" {
				meta.FrameCount, _ = strconv.Atoi(s.NbFrames)
			}
		case "audio":
			if meta.AudioCodec == "" {
				meta.AudioCodec = s.CodecName
			}
		}
	}

	if meta.VideoCodec == "" || meta.Width <= 0 || meta.Height <= 0 {
		return Metadata{}, fmt.Errorf("%w: no usable video stream found", ErrSourceUnreadable)
	}
	if meta.FrameCount == 0 && meta.FPS > 0 && meta.Duration > 0 {
		// Some containers omit nb_frames; derive it from duration.
		meta.FrameCount = int(math.Round(meta.Duration * meta.FPS))
	}
	meta.Orientation = orientation(meta.Width, meta.Height)
	return meta, nil
}

// parseFrameRate converts ffprobe's rational rate ("30000/1001") to a float.
func parseFrameRate(raw string) float64 {
	if raw == "" {
		return 0
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func orientation(width, height int) string {
	switch {
	case width > height:
		return "landscape"
	case height > width:
		return "portrait"
	default:
		return "square"
	}
}
