package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/config"
)

func TestSetupRoutesByLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	log, cleanup, err := Setup(config.LogConfig{Level: "info", Format: "json"}, &stdout, &stderr)
	require.NoError(t, err)
	defer cleanup()

	log.Debug().Msg("hidden")
	log.Info().Msg("hello")
	log.Warn().Msg("careful")
	log.Error().Msg("broken")

	out := stdout.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "careful")
	assert.NotContains(t, out, "broken")
	assert.Contains(t, stderr.String(), "broken")

	var line map[string]any
	first := strings.SplitN(out, "\n", 2)[0]
	require.NoError(t, json.Unmarshal([]byte(first), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "hello", line["message"])
}

func TestSetupConsoleAndFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "izposoja.log")

	log, cleanup, err := Setup(config.LogConfig{Level: "debug", Format: "console", Path: path}, &stdout, &stderr)
	require.NoError(t, err)

	cl := Component(log, "lending")
	cl.Debug().Int64("request", 7).Msg("transition committed")
	log.Error().Msg("boom")
	cleanup()

	assert.Contains(t, stdout.String(), "transition committed")
	assert.Contains(t, stdout.String(), "component=lending")
	assert.Contains(t, stderr.String(), "boom")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &line))
	assert.Equal(t, "lending", line["component"])
	assert.Equal(t, float64(7), line["request"])
}

func TestSetupBadFile(t *testing.T) {
	_, _, err := Setup(config.LogConfig{Path: filepath.Join(t.TempDir(), "missing", "x.log")}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}
