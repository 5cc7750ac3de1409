package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName tags every log line and the health payload.
const ServiceName = "tattoovision"

// NewLogger builds the process logger. Development gets debug output on a
// console writer; other environments emit JSON at info. A non-empty level
// from LOG_LEVEL overrides both defaults.
func NewLogger(appEnv, level string) zerolog.Logger {
	return newLogger(os.Stdout, appEnv, level)
}

func newLogger(out io.Writer, appEnv, level string) zerolog.Logger {
	dev := appEnv == "development"
	lvl := zerolog.InfoLevel
	if dev {
		lvl = zerolog.DebugLevel
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if level != "" && err == nil {
		lvl = parsed
	}

	if dev {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	logger := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", ServiceName).
		Str("env", appEnv).
		Logger()

	if level != "" && err != nil {
		logger.Warn().Str("log_level", level).Msg("unknown LOG_LEVEL, keeping default")
	}
	return logger
}

// Logger is the logger type shared by every package.
type Logger = zerolog.Logger
