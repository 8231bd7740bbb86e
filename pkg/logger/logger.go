// Package logger provides the component-scoped logrus logger shared by the
// lab_order packages.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a logrus entry carrying a "component" field.
type Logger struct {
	*logrus.Entry
}

// Config controls level, format and output of a Logger.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Format is "text" or "json". Empty means text.
	Format string
	// File, when set, sends output to a size-rotated log file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// Output overrides File and stderr. Used by tests.
	Output io.Writer
}

// New creates a logger for component using cfg.
func New(component string, cfg Config) *Logger {
	base := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch {
	case cfg.Output != nil:
		base.SetOutput(cfg.Output)
	case cfg.File != "":
		base.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
		})
	default:
		base.SetOutput(os.Stderr)
	}

	return &Logger{Entry: base.WithField("component", component)}
}

// NewDefault creates an info-level text logger writing to stderr.
func NewDefault(component string) *Logger {
	return New(component, Config{})
}

// NewDiscard creates a logger that drops everything.
func NewDiscard(component string) *Logger {
	return New(component, Config{Output: io.Discard})
}

// Named returns a logger sharing the same output with a different component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{Entry: l.Logger.WithField("component", component)}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
