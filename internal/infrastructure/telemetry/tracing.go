package telemetry

import (
	"context"
	"errors"

	"github.com/erp/manufacturing/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer of application service spans
const TracerName = "manufacturing-core"

// Span attribute keys shared by the application services
var (
	AttrOrderID     = attribute.Key("mfg.order_id")
	AttrWorkOrderID = attribute.Key("mfg.work_order_id")
	AttrComponentID = attribute.Key("mfg.component_id")
	AttrBOMID       = attribute.Key("mfg.bom_id")
	AttrErrorCode   = attribute.Key("mfg.error_code")
)

// StartServiceSpan starts an internal span named "{service}.{method}".
// The caller ends it, usually through EndSpan.
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span and ends it. Domain rule violations keep an
// unset status and only carry their code; anything else marks the span as failed.
func EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		span.SetAttributes(AttrErrorCode.String(domainErr.Code))
		return
	}
	var shortage *shared.InsufficientStockError
	if errors.As(err, &shortage) {
		span.SetAttributes(AttrErrorCode.String(shared.CodeInsufficientStock))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the trace id of the span in ctx, or ""
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
