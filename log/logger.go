// Package log provides the component loggers used across the simulator.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggerType selects the output format.
type LoggerType uint8

const (
	// ConsoleLogger writes human-readable console output.
	ConsoleLogger LoggerType = iota
	// JSONLogger writes one JSON object per event.
	JSONLogger
)

// Component loggers. They are no-ops until Init is called, so importing
// packages stay silent in library use and under test.
var (
	Root   = zerolog.Nop()
	Loader = zerolog.Nop()
	Engine = zerolog.Nop()
	Driver = zerolog.Nop()
)

// Options configures Init.
type Options struct {
	// LogLevel is the minimum level to emit. Default Info.
	LogLevel zerolog.Level
	// Type selects console or JSON output.
	Type LoggerType
}

// ParseLogLevel converts a level name ("debug", "info", ...) to a
// zerolog.Level.
func ParseLogLevel(level string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(level))
}

// Init sets up the component loggers.
func Init(opts Options) {
	switch opts.Type {
	case ConsoleLogger:
		cw := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
		Root = zerolog.New(cw).Level(opts.LogLevel).
			With().Timestamp().Logger()
	default:
		Root = zerolog.New(os.Stderr).Level(opts.LogLevel).
			With().Timestamp().Logger()
	}

	Loader = Root.With().Str("component", "loader").Logger()
	Engine = Root.With().Str("component", "engine").Logger()
	Driver = Root.With().Str("component", "driver").Logger()
}
