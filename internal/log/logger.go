// Package log holds the process-wide zerolog logger. Call Setup once
// from the command layer; library code grabs the logger with L.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(io.Discard)

// Setup configures the global logger. level is one of debug, info,
// warn, error; file, when non-empty, receives a copy of every line.
func Setup(level, file string) error {
	lvl := parseLevel(level)

	var out io.Writer = os.Stdout
	if isatty.IsTerminal(os.Stdout.Fd()) {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	}

	if file != "" {
		f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out = io.MultiWriter(out, f)
	}

	logger = zerolog.New(out).With().Timestamp().Logger().Level(lvl)
	return nil
}

// L returns the global logger.
func L() *zerolog.Logger {
	return &logger
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
