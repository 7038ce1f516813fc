// Package cli implements the possible command-line interface.
//
// Commands edit the graphs kept in the configured storage backend, print
// the visible outline, lay graphs out and render them. The CLI is built
// with cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - graph: List, create, select, import and export graphs
//   - node, edge: Edit nodes, nesting and sequence edges
//   - reduce: Drop redundant sequence edges
//   - view, browse: Print or interactively walk the visible outline
//   - layout, render: Compute positions and draw SVG, PNG, PDF or DOT
//   - serve: Run the HTTP API
//
// # Selection
//
// Most commands act on the selected graph, remembered between runs by
// 'graph use'. The --graph flag overrides it for a single command.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Resolved 42 packages (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// lowerLevel lowers l's level to the named level. Unknown names and levels
// above the current one are ignored, so --verbose wins over the config file.
func lowerLevel(l *log.Logger, name string) {
	lvl, err := log.ParseLevel(name)
	if err != nil || lvl >= l.GetLevel() {
		return
	}
	l.SetLevel(lvl)
}
