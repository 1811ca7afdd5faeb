// Package observability wraps OpenTelemetry tracing for catalog and quote work.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope name.
const TracerName = "catalog-quote-service"

// Span attribute keys.
const (
	AttrResultCount = "catalog.result_count"
	AttrPage        = "catalog.page"
	AttrProductCode = "catalog.product_code"
	AttrSessionID   = "session.id"
	AttrQuoteReady  = "quote.complete"
)

// Tracer wraps an OpenTelemetry tracer with catalog-specific span helpers.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer from tp, or from the global provider when tp is nil.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartFilter starts a span for a filter and page computation.
func (t *Tracer) StartFilter(ctx context.Context, page int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "catalog.filter", trace.WithAttributes(attribute.Int(AttrPage, page)))
}

// StartFacets starts a span for facet derivation.
func (t *Tracer) StartFacets(ctx context.Context) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "catalog.facets")
}

// StartQuote starts a span for a quote recomputation.
func (t *Tracer) StartQuote(ctx context.Context, code string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "quote.recompute", trace.WithAttributes(attribute.String(AttrProductCode, code)))
}

// StartSession starts a span for an action applied to a stored session.
func (t *Tracer) StartSession(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attribute.String(AttrSessionID, id)))
}

// RecordCount annotates span with a result count.
func RecordCount(span trace.Span, n int) {
	span.SetAttributes(attribute.Int(AttrResultCount, n))
}

// RecordQuote annotates span with whether a breakdown was produced.
func RecordQuote(span trace.Span, complete bool) {
	span.SetAttributes(attribute.Bool(AttrQuoteReady, complete))
}
