package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates the process logger writing JSON to stdout, unknown levels fall back to info.
func New(level string) *zerolog.Logger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(out io.Writer, level string) *zerolog.Logger {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsedLevel = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	log := zerolog.New(out).
		Level(parsedLevel).
		With().
		Timestamp().
		Logger()

	return &log
}
