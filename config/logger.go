package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. LOG_LEVEL picks the level (info by
// default); LOG_PRETTY=true switches to the human console writer for local
// development, otherwise output is JSON lines.
func NewLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
	if os.Getenv("LOG_PRETTY") == "true" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}
