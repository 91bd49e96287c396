package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "exstem-rotation"

// Setup writes to stdout. See New.
func Setup(level, format string) zerolog.Logger {
	return New(os.Stdout, level, format)
}

// New returns the process logger writing to out. Format "pretty" renders
// console lines; anything else emits one JSON object per event. An
// unrecognised level means info. The level is also applied globally.
func New(out io.Writer, level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	return zerolog.New(encoderFor(out, format)).
		With().
		Timestamp().
		Str("service", serviceName).
		Caller().
		Logger()
}

func encoderFor(out io.Writer, format string) io.Writer {
	if format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
