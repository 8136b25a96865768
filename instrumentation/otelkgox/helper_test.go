package otelkgox

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/clinia/otelkafkax"
	"github.com/clinia/otelkafkax/logrusx"
)

func newTestTracer(t *testing.T, opts ...otelkafkax.Option) (*otelkafkax.Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	opts = append([]otelkafkax.Option{
		otelkafkax.WithTracerProvider(tp),
		otelkafkax.WithPropagators(propagation.TraceContext{}),
		otelkafkax.WithLogger(logrusx.NewNull("otelkgox-test", otelkafkax.Version())),
	}, opts...)

	return otelkafkax.NewTracer(opts...), sr
}
