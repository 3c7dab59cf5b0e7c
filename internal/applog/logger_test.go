package applog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/workshop-grades/internal/applog"
	"github.com/mind-engage/workshop-grades/internal/config"
)

func TestNew_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := applog.New(config.LogConfig{Level: "info", Format: "json"})
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	applog.NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"}).
		Warn("cell skipped", slog.Int("participant_id", 12))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "cell skipped", m["msg"])
	assert.EqualValues(t, 12, m["participant_id"])
	assert.NotContains(t, m, "source")
}

func TestNewWithWriter_TextHasSource(t *testing.T) {
	var buf bytes.Buffer
	applog.NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "text"}).Info("hello")
	assert.Contains(t, buf.String(), "source=")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level_"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, applog.ParseLevel(tt.in))

			var buf bytes.Buffer
			l := applog.NewWithWriter(&buf, config.LogConfig{Level: tt.in})
			l.Log(context.TODO(), tt.want-1, "suppressed")
			assert.Zero(t, buf.Len())
		})
	}
}
