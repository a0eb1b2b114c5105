package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level   = new(slog.LevelVar)
	current = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
)

// InitFromEnv sets the log level based on LOG_LEVEL (debug|info|warn|error)
// and the output format based on LOG_FORMAT (text|json).
func InitFromEnv() {
	Init(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Init installs a logger writing to w. Unknown levels fall back to info and
// unknown formats to text.
func Init(w io.Writer, lvl, format string) {
	level.Set(ParseLevel(lvl))
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	current = slog.New(handler)
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	return current
}

// With returns a logger tagged with the given component name.
func With(component string) *slog.Logger {
	return current.With(slog.String("component", component))
}

func Debugf(format string, args ...interface{}) {
	current.Debug(fmt.Sprintf(format, args...))
}

func Infof(format string, args ...interface{}) {
	current.Info(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...interface{}) {
	current.Warn(fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...interface{}) {
	current.Error(fmt.Sprintf(format, args...))
}

func Fatalf(format string, args ...interface{}) {
	current.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
