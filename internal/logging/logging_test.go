package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "json", "warn")

	logger.Info("nevypíše se")
	logger.Warn("koš plný", "bin_id", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "koš plný", line["msg"])
	assert.Equal(t, float64(3), line["bin_id"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "text", "info")

	logger.Info("start", "port", "3000")
	assert.Contains(t, buf.String(), "start")
	assert.Contains(t, buf.String(), "3000")
}
