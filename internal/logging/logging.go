// Package logging sets up zerolog for the FitTrack binaries.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.DurationFieldInteger = true
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// Configure returns the root logger writing to stderr. level is a zerolog
// level name; unknown names fall back to info. pretty selects the console
// writer instead of JSON.
func Configure(level string, pretty bool) zerolog.Logger {
	return New(os.Stderr, level, pretty)
}

// New is Configure with an explicit writer. Output of the standard log
// package is redirected to the returned logger.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	stdlog.SetFlags(0)
	stdlog.SetOutput(logger)
	return logger
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
