// Package logger provides the application-wide zerolog constructor.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level  string // trace, debug, info, warn, error
	Pretty bool   // human-readable console output instead of JSON
}

// New creates a configured zerolog.Logger. Unknown levels fall back to info.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(writer)
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
