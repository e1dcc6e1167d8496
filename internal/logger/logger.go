// Package logger provides structured logging for pricecollect.
// Records are written with log/slog in text form to stderr. Debug and info
// records are only emitted when verbose mode is enabled via the --verbose
// flag; warnings and errors are always emitted.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	level             = new(slog.LevelVar)
	base              = newLogger(os.Stderr)
)

func init() {
	level.Set(slog.LevelWarn)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Timestamps make CLI output noisy and tests brittle.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelWarn)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for log records.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = newLogger(w)
}

// Debug logs a message with key/value pairs if verbose mode is enabled.
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs an informational message if verbose mode is enabled.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a warning.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs an error.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Component returns a logger tagged with the given component name.
// The returned logger follows later SetOutput and SetVerbose calls.
func Component(name string) *slog.Logger {
	return slog.New(&forwardHandler{attrs: []slog.Attr{slog.String("component", name)}})
}

// forwardHandler resolves the package logger at record time so component
// loggers created at startup keep working after the output is swapped.
// Groups are flattened into plain attributes.
type forwardHandler struct {
	attrs []slog.Attr
}

func (h *forwardHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return current().Handler().Enabled(ctx, l)
}

func (h *forwardHandler) Handle(ctx context.Context, r slog.Record) error {
	return current().Handler().WithAttrs(h.attrs).Handle(ctx, r)
}

func (h *forwardHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &forwardHandler{attrs: append(slices.Clip(h.attrs), attrs...)}
}

func (h *forwardHandler) WithGroup(string) slog.Handler {
	return h
}
