package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options configures NewLogger.
type Options struct {
	Debug bool
	// Format is "json" (default) or "text".
	Format string
	// File, when set, receives a copy of every record.
	File string
	// Silent drops the console handler.
	Silent bool
	// Console defaults to stderr so command output on stdout stays clean.
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds a logger from opts. The returned closer releases the log
// file, if any.
func NewLogger(opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}

	newHandler := func(w io.Writer) slog.Handler {
		if strings.EqualFold(opts.Format, "text") {
			return slog.NewTextHandler(w, hopts)
		}
		return slog.NewJSONHandler(w, hopts)
	}

	var handlers []slog.Handler
	if !opts.Silent {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		handlers = append(handlers, newHandler(console))
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, newHandler(f))
		closer = f
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, hopts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	return slog.New(handler), closer, nil
}

// InitLogger configures the default logger with optional file output. A log
// file that cannot be opened is reported and skipped.
func InitLogger(debug bool, logFile string) io.Closer {
	logger, closer, err := NewLogger(Options{Debug: debug, File: logFile})
	if err != nil {
		logger, closer, _ = NewLogger(Options{Debug: debug})
		logger.Error("Failed to open log file", "path", logFile, "error", err)
	}
	slog.SetDefault(logger)
	return closer
}

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

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
