// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package media

import "errors"

var (
	// ErrSourceUnreadable classifies failures to open or decode the input
	// video. Use errors.Is instead of string matching.
	ErrSourceUnreadable = errors.New("source unreadable")

	// ErrSinkUnwritable classifies failures to create or write the output
	// video, including the final audio remux step.
	ErrSinkUnwritable = errors.New("sink unwritable")
)
