// Package log is eg's structured logger. Warnings and errors go to stderr;
// with a debug directory configured every record is also appended to a
// daily JSON file so a failed install can be inspected afterwards.
package log

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
)

var (
	logger     = slog.Default()
	fileWriter *FileWriter
)

// Options configures the logger.
type Options struct {
	// Verbose lowers the stderr level to debug.
	Verbose bool
	// JSONFormat writes stderr records as JSON instead of text.
	JSONFormat bool
	// DebugDir receives daily debug files. Empty disables file logging.
	DebugDir string
	// RetentionDays removes debug files older than this many days. 0 keeps all.
	RetentionDays int
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// Init replaces the global logger.
func Init(opts Options) error {
	Close()

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{newHandler(stderr, level, opts.JSONFormat)}

	if opts.DebugDir != "" {
		if opts.RetentionDays > 0 {
			Cleanup(opts.DebugDir, opts.RetentionDays)
		}
		fw, err := NewFileWriter(opts.DebugDir)
		if err != nil {
			return err
		}
		fileWriter = fw
		handlers = append(handlers, newHandler(fw, slog.LevelDebug, true))
	}

	setLogger(slog.New(&multiHandler{handlers: handlers}))
	return nil
}

func newHandler(w io.Writer, level slog.Level, json bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func setLogger(l *slog.Logger) {
	logger = l
	slog.SetDefault(l)
}

// Close releases the debug file, if any.
func Close() {
	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}
}

// multiHandler sends each record to every handler enabled for its level.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *multiHandler) each(fn func(slog.Handler) slog.Handler) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = fn(h)
	}
	return &multiHandler{handlers: out}
}

func Debug(msg string, args ...any) { logger.Debug(msg, args...) }
func Info(msg string, args ...any)  { logger.Info(msg, args...) }
func Warn(msg string, args ...any)  { logger.Warn(msg, args...) }
func Error(msg string, args ...any) { logger.Error(msg, args...) }

// With returns a logger with additional attributes.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

// SetOutput logs everything as text to w. Used by tests.
func SetOutput(w io.Writer) {
	setLogger(slog.New(newHandler(w, slog.LevelDebug, false)))
}

// SetCommand tags subsequent records with the command being run, so lines
// from different invocations can be told apart in the shared debug file.
func SetCommand(name string) {
	setLogger(logger.With(slog.String("command", name)))
}
