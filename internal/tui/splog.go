// Package tui holds the terminal surface: the splog logger, color handling,
// the smartlog renderer, prompts, and the interactive undo browser.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// consoleHandler writes bare messages without timestamps or level prefixes.
// The quiet pointer lets the owning Splog silence console output while a
// full-screen program owns the terminal.
type consoleHandler struct {
	writer    io.Writer
	debugMode bool
	quiet     *bool
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if *h.quiet {
		return nil
	}
	_, err := fmt.Fprintln(h.writer, record.Message)
	return err
}

func (h *consoleHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// newLogRotator builds a rotating file writer. Rotation knobs come from
// ARBOR_LOG_MAX_SIZE (megabytes), ARBOR_LOG_MAX_BACKUPS, and
// ARBOR_LOG_MAX_AGE (days).
func newLogRotator(logFilePath string) *lumberjack.Logger {
	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   false,
	}

	if v := os.Getenv("ARBOR_LOG_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rotator.MaxSize = n
		}
	}
	if v := os.Getenv("ARBOR_LOG_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			rotator.MaxBackups = n
		}
	}
	if v := os.Getenv("ARBOR_LOG_MAX_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rotator.MaxAge = n
		}
	}

	return rotator
}

// multiHandler fans a record out to every handler that wants it.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// Splog is the command output channel: console messages for the user, with
// everything also tee'd to a rotated debug log when a log path is configured.
type Splog struct {
	logger    *slog.Logger
	writer    *os.File
	logWriter io.WriteCloser
	quiet     bool
}

// NewSplog creates a console-only splog. Debug messages are shown when the
// DEBUG environment variable is set.
func NewSplog() *Splog {
	splog, _ := NewSplogWithFile("")
	return splog
}

// NewSplogWithFile creates a splog that also appends to a rotated log file.
// An empty path means console only.
func NewSplogWithFile(logFilePath string) (*Splog, error) {
	splog := &Splog{
		writer: os.Stdout,
	}

	console := &consoleHandler{
		writer:    splog.writer,
		debugMode: os.Getenv("DEBUG") != "",
		quiet:     &splog.quiet,
	}
	handlers := []slog.Handler{console}

	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		rotator := newLogRotator(logFilePath)
		splog.logWriter = rotator

		// The file gets every level, timestamped.
		fileHandler := slog.NewTextHandler(rotator, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{Key: a.Key, Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05.000"))}
				}
				return a
			},
		})
		handlers = append(handlers, fileHandler)
	}

	splog.logger = slog.New(&multiHandler{handlers: handlers})
	return splog, nil
}

// SetQuiet suppresses console output when true. File logging is unaffected.
func (s *Splog) SetQuiet(quiet bool) {
	s.quiet = quiet
}

// IsQuiet reports whether console output is suppressed.
func (s *Splog) IsQuiet() bool {
	return s.quiet
}

func (s *Splog) logMessage(level slog.Level, msg string) {
	s.logger.Log(context.Background(), level, msg)
}

func (s *Splog) format(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Info writes an info message.
func (s *Splog) Info(format string, args ...interface{}) {
	s.logMessage(slog.LevelInfo, s.format(format, args...))
}

// Warn writes a warning message.
func (s *Splog) Warn(format string, args ...interface{}) {
	s.logMessage(slog.LevelWarn, "⚠️  "+s.format(format, args...))
}

// Error writes an error message.
func (s *Splog) Error(format string, args ...interface{}) {
	s.logMessage(slog.LevelError, "❌ "+s.format(format, args...))
}

// Tip writes a suggestion for what to run next.
func (s *Splog) Tip(format string, args ...interface{}) {
	s.logMessage(slog.LevelInfo, "💡 "+s.format(format, args...))
}

// Debug writes a debug message, shown on the console only under DEBUG.
func (s *Splog) Debug(format string, args ...interface{}) {
	s.logMessage(slog.LevelDebug, s.format(format, args...))
}

// Page writes multi-line content such as rendered smartlog output.
func (s *Splog) Page(content string) {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprint(s.writer, content)
}

// Newline writes a blank line.
func (s *Splog) Newline() {
	if s.quiet {
		return
	}
	_, _ = fmt.Fprintln(s.writer)
}

// Close closes the log file if one was opened.
func (s *Splog) Close() error {
	if s.logWriter != nil {
		return s.logWriter.Close()
	}
	return nil
}
