package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo, "json")
	l.Debug("hidden")
	l.Info("dataset_load_ok", "rows", 17)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"dataset_load_ok"`)
	assert.Contains(t, out, `"rows":17`)
}

func TestSetupMirrorsToFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "dash.log")
	t.Setenv("LOG_FILE", p)
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")
	l := Setup()
	l.Info("mirror_check")
	Close()

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "mirror_check")
}
