// Package cli implements the grapes command-line interface.
//
// The CLI opens the catalog named by the configuration (a JSON snapshot
// for the memory driver, or a MongoDB database), runs one operation
// against it and closes it again. Memory catalogs are written back on
// close, so imports persist between invocations.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP API
//   - import, export: Load snapshots or Maven POMs, dump the catalog
//   - graph: Render a module's dependency graph as DOT, SVG or JSON
//   - versions, licenses, promote: Query and promote catalogued modules
//   - browse: Pick a module interactively and inspect its dependencies
//   - cache, config: Manage the lookup cache and show the configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is also attached to the command context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Imported 12 modules (1.234s)".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "took", time.Since(p.start).Round(time.Millisecond))...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
