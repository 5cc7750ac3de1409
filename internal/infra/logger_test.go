package infra

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		level  string
		expect zerolog.Level
	}{
		{"production default", "production", "", zerolog.InfoLevel},
		{"development default", "development", "", zerolog.DebugLevel},
		{"override", "production", "WARN", zerolog.WarnLevel},
		{"unknown keeps default", "production", "loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.env, tt.level)
			if logger.GetLevel() != tt.expect {
				t.Fatalf("level = %s, want %s", logger.GetLevel(), tt.expect)
			}
		})
	}
}

func TestNewLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "")
	logger.Info().Msg("hello")

	line := buf.String()
	if !strings.Contains(line, `"service":"tattoovision"`) || !strings.Contains(line, `"env":"production"`) {
		t.Fatalf("log line misses service fields: %s", line)
	}
}

func TestNewLoggerWarnsOnUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "production", "loud")
	if !strings.Contains(buf.String(), `"log_level":"loud"`) {
		t.Fatalf("expected warning about LOG_LEVEL, got %s", buf.String())
	}
}
