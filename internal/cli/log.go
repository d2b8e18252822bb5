// Package cli implements the lineageview command-line interface.
//
// The commands share one [CLI] value holding the logger and the loaded
// config file. Every command that reads metadata goes through a
// [pipeline.Runner], so the CLI, the TUI, and the HTTP server resolve views
// the same way and share the same cache.
//
// # Commands
//
//   - load: Read dbt artifacts or a lineage report and write graph.json
//   - view: Resolve one view and write it as JSON, DOT, SVG, or PNG
//   - suggest: Print search suggestions for a query
//   - doctor: Report dropped lineage, cycles, and isolated tables
//   - explore: Browse the lineage graph interactively in the terminal
//   - serve: Run the HTTP API
//   - cache, config: Manage the local cache and the config file
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

// newLogger logs to w with a short wall-clock timestamp.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// timed starts a clock and returns a func that logs msg at info level with
// the elapsed time appended as "took".
func timed(l *log.Logger, msg string) func(keyvals ...any) {
	start := time.Now()
	return func(keyvals ...any) {
		took := time.Since(start).Round(time.Millisecond)
		l.Info(msg, append(keyvals, "took", took)...)
	}
}
