// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package procgroup places spawned ffmpeg/ffprobe processes in their own
// process group so that a termination signal reaps the whole child tree,
// not just the direct child.
package procgroup
