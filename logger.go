// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import (
	"log/slog"

	"github.com/gogpu/ink/backend"
)

// SetLogger configures the logger for ink and all registered backends.
// By default, ink produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by ink:
//   - [slog.LevelDebug]: texture and buffer allocation, degenerate sizes,
//     command buffer submission
//   - [slog.LevelInfo]: device selection
//   - [slog.LevelWarn]: failed allocations and failed submissions
//
// Example:
//
//	ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	backend.SetLogger(l)
}

// Logger returns the current logger used by ink.
func Logger() *slog.Logger {
	return backend.Logger()
}
