package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the process logger. Dev gets a human-readable console writer;
// anything else logs JSON for log shippers.
func New(env string) zerolog.Logger {
	if env == "dev" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return zerolog.New(out).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
