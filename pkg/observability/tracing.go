package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "study-set-server"

// Tracer returns the process tracer. It is a no-op until a provider is registered with otel.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns the process meter. It is a no-op until a provider is registered with otel.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// TraceFunction starts a span named "<component>.<function>".
func TraceFunction(ctx context.Context, component, function string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, fmt.Sprintf("%s.%s", component, function), trace.WithAttributes(attributes...))
}

// FinishSpan ends a span and records any error pointed to by errPtr.
// Use with a named error return: `defer observability.FinishSpan(span, &err)`
func FinishSpan(span trace.Span, errPtr *error) {
	if span == nil {
		return
	}
	if errPtr != nil && *errPtr != nil {
		span.RecordError(*errPtr)
		span.SetStatus(codes.Error, (*errPtr).Error())
	}
	span.End()
}
