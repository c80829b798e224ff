// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package media

import (
	"fmt"
	"sync"

	vidio "github.com/AlexEidt/Vidio"

	"github.com/ManuGH/demark/internal/region"
)

// VideoSink encodes processed frames into a video-only file. The audio
// track is reattached afterwards by MergeAudio.
type VideoSink struct {
	writer    *vidio.VideoWriter
	closeOnce sync.Once
	closed    bool
}

// NewSink creates the encoder for the given output path and geometry.
func NewSink(path string, geo region.VideoGeometry) (*VideoSink, error) {
	options := vidio.Options{
		FPS:   geo.FrameRate,
		Codec: "libx264",
	}
	writer, err := vidio.NewVideoWriter(path, geo.Width, geo.Height, &options)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrSinkUnwritable, path, err)
	}
	return &VideoSink{writer: writer}, nil
}

// Write encodes one frame. Frames must arrive in strict decode order.
func (s *VideoSink) Write(pix []byte) error {
	if s.closed {
		return fmt.Errorf("%w: sink already closed", ErrSinkUnwritable)
	}
	if err := s.writer.Write(pix); err != nil {
		return fmt.Errorf("%w: %v", ErrSinkUnwritable, err)
	}
	return nil
}

// Close flushes and releases the encoder. Safe to call more than once.
func (s *VideoSink) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		s.writer.Close()
	})
	return nil
}
