package otelkafkax

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/clinia/otelkafkax/logrusx"
)

func newTestTracer(t *testing.T, opts ...Option) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	opts = append([]Option{
		WithTracerProvider(tp),
		WithPropagators(propagation.TraceContext{}),
		WithLogger(logrusx.NewNull(defaultTracerName, Version())),
	}, opts...)

	return NewTracer(opts...), sr
}
