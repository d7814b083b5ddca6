package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"lblreport/internal/config"
)

const (
	ServiceName = "lbl-report"
	TracerName  = "lblreport"
)

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	Logger         *slog.Logger
}

// InitializeOTel installs a global tracer provider according to cfg. With
// the "none" exporter nothing is installed and spans stay no-ops.
func InitializeOTel(cfg config.TelemetryConfig, runID string, logger *slog.Logger) (*OTelProviders, error) {
	return initializeOTel(cfg, runID, logger, os.Stdout)
}

func initializeOTel(cfg config.TelemetryConfig, runID string, logger *slog.Logger, out io.Writer) (*OTelProviders, error) {
	providers := &OTelProviders{Logger: logger}

	var exporter sdktrace.SpanExporter
	switch cfg.TraceExporter {
	case "", "none":
		return providers, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = exp
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", runID),
	)

	// The run is short-lived; spans are exported synchronously so nothing
	// is lost when the process exits.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	providers.TracerProvider = tp

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing initialized", slog.String("exporter", cfg.TraceExporter))
	return providers, nil
}

// Shutdown flushes and stops the tracer provider if one was installed.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p == nil || p.TracerProvider == nil {
		return nil
	}
	if err := p.TracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}
