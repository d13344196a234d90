package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns the diagnostics logger. The report goes to stdout, so
// everything logged here belongs on stderr.
func New(verbose bool) zerolog.Logger {
	return newLogger(os.Getenv("LOG_LEVEL"), verbose, func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.NoColor = !isatty.IsTerminal(os.Stderr.Fd())
	})
}

// Discard is used where no diagnostics are wanted, mostly in tests.
func Discard() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

func newLogger(envLevel string, verbose bool, options ...func(w *zerolog.ConsoleWriter)) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05.000",
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.MessageFieldName,
		},
	}
	for _, opt := range options {
		opt(&writer)
	}

	return zerolog.New(writer).
		Level(parseLevel(envLevel, verbose)).
		With().
		Timestamp().
		Str("app", "myresources").
		Logger()
}

func parseLevel(envLevel string, verbose bool) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(envLevel)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
