// Package logging sets up slog for the nanosnap command.
//
// Records always go to a JSON log file in the user cache directory. A text
// copy can be sent to a console writer as well.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appName     = "nanosnap"
	logFileName = "nanosnap.log"
)

// Log level mapping
var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog.Level.
// Unknown names yield slog.LevelWarn and false.
func ParseLevel(name string) (slog.Level, bool) {
	level, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return slog.LevelWarn, false
	}
	return level, true
}

// Config controls where log records go
type Config struct {
	Level string
	// Dir holds the log file; empty means CacheDir()
	Dir string
	// Console also receives records as text when set
	Console io.Writer
}

// Setup builds the logger described by cfg and makes it the slog default.
// The returned closer releases the log file.
func Setup(cfg Config) (*slog.Logger, io.Closer, error) {
	level, _ := ParseLevel(cfg.Level)

	dir := cfg.Dir
	if dir == "" {
		dir = CacheDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(dir, logFileName)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	var handler slog.Handler = slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	if cfg.Console != nil {
		handler = NewMultiHandler(handler, slog.NewTextHandler(cfg.Console, &slog.HandlerOptions{
			Level: level,
		}))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	logger.Debug("logging initialized", "level", level.String(), "log_file", logPath)
	return logger, logFile, nil
}

// CacheDir returns the XDG cache directory for nanosnap
func CacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, appName)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(homeDir, "Library", "Caches", appName)
	}
	return filepath.Join(homeDir, ".cache", appName)
}

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler fans every record out to all handlers
func NewMultiHandler(handlers ...slog.Handler) slog.Handler {
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes the record to every enabled handler and joins their errors
func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
