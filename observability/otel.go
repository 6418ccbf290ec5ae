package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type otelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer returns a Tracer backed by the global OpenTelemetry provider.
func NewOTelTracer(name string) Tracer {
	return &otelTracer{tracer: otel.Tracer(name)}
}

// NewOTelTracerFrom uses an explicit provider instead of the global one.
func NewOTelTracerFrom(tp trace.TracerProvider, name string) Tracer {
	return &otelTracer{tracer: tp.Tracer(name)}
}

func (t *otelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetTag(key string, value interface{}) {
	s.span.SetAttributes(attributeOf(key, value))
}

func (s *otelSpan) SetError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *otelSpan) Finish() { s.span.End() }

func attributeOf(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
