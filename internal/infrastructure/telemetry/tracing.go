package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for service-level spans
const TracerName = "procurement-backend"

// Span attribute keys shared by the procurement services
const (
	SpanAttrLoaID         = "loa.id"
	SpanAttrLoaNumber     = "loa.number"
	SpanAttrBillID        = "bill.id"
	SpanAttrDocumentKind  = "document.kind"
	SpanAttrDocumentBytes = "document.bytes"
)

// StartSpan starts an internal span on the global tracer. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "loa.create", attribute.String(telemetry.SpanAttrLoaNumber, n))
//	defer span.End()
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, spanName, opts...)
}

// StartServiceSpan starts a span named {service}.{method}
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, method), attrs...)
}

// RecordError records err on the span and marks it failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
