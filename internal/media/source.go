// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package media holds the decode, encode and probe collaborators around the
// compositing core. Frame I/O runs over ffmpeg pipes via Vidio; metadata
// comes from ffprobe; the audio remux is a supervised ffmpeg process.
package media

import (
	"fmt"
	"io"
	"sync"

	vidio "github.com/AlexEidt/Vidio"

	"github.com/ManuGH/demark/internal/region"
)

// VideoSource decodes a video file into a lazy, forward-only frame
// sequence. It is not safe for concurrent use; the pipeline driver is its
// only caller.
type VideoSource struct {
	video     *vidio.Video
	closeOnce sync.Once
	closed    bool
}

// OpenSource opens the input video for decoding.
func OpenSource(path string) (*VideoSource, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnreadable, path, err)
	}
	return &VideoSource{video: video}, nil
}

// Geometry returns the video geometry the core consumes.
func (s *VideoSource) Geometry() region.VideoGeometry {
	return region.VideoGeometry{
		Width:      s.video.Width(),
		Height:     s.video.Height(),
		FrameRate:  s.video.FPS(),
		FrameCount: s.video.Frames(),
	}
}

// Channels returns the number of interleaved bytes per pixel in the decoded
// frame buffers.
func (s *VideoSource) Channels() int {
	return s.video.Depth()
}

// Next decodes the next frame and returns its pixel buffer. The buffer is
// reused between calls; callers that hold a frame across Next must copy it.
// Returns io.EOF when the stream ends.
func (s *VideoSource) Next() ([]byte, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: source already closed", ErrSourceUnreadable)
	}
	if !s.video.Read() {
		return nil, io.EOF
	}
	return s.video.FrameBuffer(), nil
}

// Close releases the decoder. Safe to call more than once.
func (s *VideoSource) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		s.video.Close()
	})
	return nil
}
