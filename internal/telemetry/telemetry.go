package telemetry

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "devtasks"

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled  bool
	// Endpoint is the OTLP/HTTP collector host:port. Empty uses the exporter default or OTEL_EXPORTER_OTLP_* env
	Endpoint string
	Insecure bool
	Version  string
}

// Provider manages the tracer used for runs
type Provider struct {
	tp     *sdktrace.TracerProvider // nil when disabled
	tracer trace.Tracer
}

// NewProvider creates a new telemetry provider. A disabled provider hands out a no-op tracer
func NewProvider(ctx context.Context, config TelemetryConfig, logger zerolog.Logger) (*Provider, error) {
	if !config.Enabled {
		logger.Debug().Msg("Telemetry disabled")
		return &Provider{tracer: noop.NewTracerProvider().Tracer(serviceName)}, nil
	}

	var opts []otlptracehttp.Option
	if config.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(config.Endpoint))
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	res := resource.NewSchemaless(
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(config.Version),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	logger.Debug().Str("endpoint", config.Endpoint).Msg("Telemetry enabled")
	return &Provider{tp: tp, tracer: tp.Tracer(serviceName)}, nil
}

// Tracer returns the tracer runs should record spans with
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Shutdown flushes pending spans and shuts down the exporter
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
