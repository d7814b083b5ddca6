package infrastructure

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"lblreport/internal/config"
)

func TestInitializeOTelNone(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, "run-1", logger)
	require.NoError(t, err)
	assert.Nil(t, providers.TracerProvider)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTelStdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	providers, err := initializeOTel(config.TelemetryConfig{TraceExporter: "stdout", Environment: "test"}, "run-1", logger, &out)
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	_, span := otel.Tracer("test").Start(context.Background(), "unit-span")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, out.String(), "unit-span")
	assert.Contains(t, out.String(), "run-1")
}

func TestInitializeOTelUnknownExporter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "zipkin"}, "run-1", logger)
	assert.Error(t, err)
}
