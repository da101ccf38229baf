// Package cli implements the codeflow command-line interface.
//
// The commands drive the graph presentation engine from a terminal: they
// validate and lay out analysis results, render them to SVG, PNG, JSON or
// DOT, browse them interactively, and talk to the upload and export
// collaborators. The CLI is built on cobra and logs through
// charmbracelet/log.
//
// # Commands
//
//   - validate: Normalize an analysis result and report what was found
//   - layout: Compute a positioned layout and write it as JSON
//   - render: Render an analysis result to one or more formats
//   - view: Browse a graph in the terminal, with hover details and export
//   - upload: Send a source file or project archive to the analysis backend
//   - export: Fetch an export of the current graph from the collaborator
//   - serve: Host the export collaborator and a viewer page
//   - cache, config, completion: housekeeping
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at the given level, with
// "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long an operation took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out 42 nodes (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
