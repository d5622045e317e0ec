// Package logger configures the process-wide zerolog logger.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Options control where and how log output goes.
type Options struct {
	// File receives JSON logs when set. Takes precedence over Pretty.
	File string
	// Pretty selects human-readable console output on stderr.
	Pretty bool
	// Verbose forces debug level regardless of LOG_LEVEL.
	Verbose bool
}

// Init builds the logger. The level comes from the LOG_LEVEL environment
// variable (trace, debug, info, warn, error) unless Verbose overrides it.
func Init(opts Options) (zerolog.Logger, error) {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	var log zerolog.Logger
	switch {
	case opts.File != "":
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("opening log file %s: %w", opts.File, err)
		}
		log = zerolog.New(file).Level(level).With().Timestamp().Logger()
	case opts.Pretty:
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	default:
		log = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}

	log.Debug().Str("level", level.String()).Msg("Logger initialized")
	return log, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
