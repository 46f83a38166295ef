package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// New builds a timestamped logger writing to w. Unknown levels fall back to info.
func New(level string, w io.Writer) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &logger
}

// Console is New with a human-readable stderr writer.
func Console(level string) *zerolog.Logger {
	return New(level, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// Nop discards everything.
func Nop() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
