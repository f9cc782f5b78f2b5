// Package telemetry wires OpenTelemetry tracing. Runs and tool executions
// open spans through StartSpan; Init decides where they go.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/Ygeth/adkProject"

// Exporter names accepted by Config.
const (
	ExporterOff    = "off"
	ExporterStdout = "stdout"
)

// Config selects the span exporter.
type Config struct {
	Exporter    string // off or stdout
	ServiceName string // service.name resource attribute
	Output      io.Writer // stdout exporter target; defaults to os.Stdout
	PrettyPrint bool
}

// Init installs the global tracer provider and returns its shutdown
// function. With the exporter off a no-op provider is installed.
func Init(_ context.Context, cfg Config) (func(context.Context) error, error) {
	noopShutdown := func(context.Context) error { return nil }

	switch cfg.Exporter {
	case "", ExporterOff:
		otel.SetTracerProvider(noop.NewTracerProvider())
		return noopShutdown, nil
	case ExporterStdout:
	default:
		return nil, fmt.Errorf("telemetry: unsupported exporter %q", cfg.Exporter)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create stdout exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// newResource describes the process. An empty name keeps the SDK default.
func newResource(serviceName string) (*resource.Resource, error) {
	if serviceName == "" {
		return resource.Default(), nil
	}
	return resource.Merge(resource.Default(), resource.NewSchemaless(semconv.ServiceName(serviceName)))
}

// StartSpan starts a span on the global provider.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
