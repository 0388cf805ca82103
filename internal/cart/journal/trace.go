package journal

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars).
	// Empty string if no active span is found in the context.
	TraceID string

	// SpanID is the W3C span ID (16 lowercase hex chars).
	SpanID string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and returns
// its trace_id and span_id as hex strings.
//
// How it works:
//  1. otelhttp.NewHandler (wrapped around the router in httpx.NewRouter)
//     extracts the W3C traceparent header and starts a server span.
//  2. app.Service starts a child span per cart operation, so ctx here
//     carries that child.
//  3. trace.SpanFromContext(ctx) retrieves it and SpanContext() gives the
//     TraceID and SpanID.
//  4. IsValid() guards against the zero value (no active span).
//
// Without an active span (the TUI with tracing off, unit tests) both fields
// are empty strings and the entry is stored without trace linkage.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()

	if !sc.IsValid() {
		return TraceInfo{}
	}

	return TraceInfo{
		TraceID: sc.TraceID().String(), // 32 hex chars, e.g. "4bf92f3577b34da6a3ce929d0e0e4736"
		SpanID:  sc.SpanID().String(),  // 16 hex chars, e.g. "00f067aa0ba902b7"
	}
}

// NewEntry is a convenience constructor that builds a journal Entry with
// the trace info automatically extracted from ctx.
//
// Usage in the cart service:
//
//	entry := journal.NewEntry(ctx, sessionID, journal.ActionItemAdded, 1, 0, 500, false)
//	_ = repo.Save(ctx, entry)
func NewEntry(
	ctx context.Context,
	sessionID string,
	action Action,
	productID int,
	delta int,
	subtotal int64,
	giftPresent bool,
) *Entry {
	ti := ExtractTraceInfo(ctx)

	return &Entry{
		SessionID:   sessionID,
		Action:      action,
		ProductID:   productID,
		Delta:       delta,
		Subtotal:    subtotal,
		GiftPresent: giftPresent,
		TraceID:     ti.TraceID,
		SpanID:      ti.SpanID,
		RecordedAt:  time.Now().UTC(),
	}
}
