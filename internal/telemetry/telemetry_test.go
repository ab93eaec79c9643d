package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/erazemk/izposoja/internal/config"
)

func TestStdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(config.TracingConfig{Exporter: "stdout", SampleRate: 1}, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "lending.MarkAsLent")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "lending.MarkAsLent")
	assert.Contains(t, buf.String(), ServiceName)
}

func TestNoneExporter(t *testing.T) {
	shutdown, err := Setup(config.TracingConfig{Exporter: "none", SampleRate: 1}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestUnknownExporter(t *testing.T) {
	_, err := Setup(config.TracingConfig{Exporter: "zipkin"}, nil)
	assert.Error(t, err)
}
