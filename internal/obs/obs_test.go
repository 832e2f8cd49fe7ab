package obs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/homestay/backend/internal/obs"
)

func TestNewLogger_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	log := obs.NewLogger(&buf, "production", "warn")

	log.Info("dropped")
	log.Warn("kept", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestNewLogger_TintInDev(t *testing.T) {
	var buf bytes.Buffer
	log := obs.NewLogger(&buf, "local", "debug")

	log.Debug("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()), "dev output is human readable, not JSON")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, obs.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, obs.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, obs.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, obs.ParseLevel("verbose"))
}

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := obs.InitTracer(context.Background(), "homestay-api", "test", "")

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
