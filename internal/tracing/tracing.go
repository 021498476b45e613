package tracing

import (
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/layer-3/socialpay/core"
)

// ServiceName identifies this process in exported spans
const ServiceName = "socialpay"

// NewProvider builds a tracer provider for the named exporter. An empty
// exporter returns nil, which leaves the global no-op provider in place.
// A nil writer means os.Stderr.
func NewProvider(exporter string, w io.Writer) (*sdktrace.TracerProvider, error) {
	if w == nil {
		w = os.Stderr
	}

	var spanExporter sdktrace.SpanExporter
	switch exporter {
	case "", "none":
		return nil, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		spanExporter = exp
	default:
		return nil, core.NewError(core.KindConfiguration, fmt.Sprintf("unknown trace exporter %q", exporter))
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(ServiceName),
		)),
	), nil
}
