package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_AddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "text", Component: ComponentOverview, Output: &buf})

	logger.Warn("currency rate missing", FieldCurrency, "USD")

	out := buf.String()
	assert.Contains(t, out, "component=overview")
	assert.Contains(t, out, "currency=USD")
	assert.Contains(t, out, "level=WARN")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentPlanning, Output: &buf})

	logger.Info("synced", FieldYear, 2024)

	assert.Contains(t, buf.String(), `"component":"planning"`)
	assert.Contains(t, buf.String(), `"year":2024`)
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Output: &buf}).WithComponent(ComponentCache)

	logger.Info("evicted")

	assert.Equal(t, ComponentCache, logger.Component())
	assert.Contains(t, buf.String(), "component=cache")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	logger := Discard()
	assert.Same(t, logger, OrDiscard(logger))
}
