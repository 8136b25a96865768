package otelkgox

import (
	"context"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/clinia/otelkafkax"
	"github.com/clinia/otelkafkax/messagex"
)

// ProduceFunc matches the signature of kgo.Client.Produce: the record is
// buffered and the promise is invoked once the broker acknowledges or
// refuses it.
type ProduceFunc func(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))

// WrapProduce decorates an asynchronous produce. A producer span is started
// and injected into the record headers before next runs; the span is
// finalized by the produce promise, after which the caller's own promise
// observes the unchanged result. A nil caller promise still gets the span
// finalized. Wrapping an already wrapped produce returns it unchanged.
func WrapProduce(tracer *otelkafkax.Tracer, next ProduceFunc) ProduceFunc {
	if next == nil || tracer.IsWrapped(next) {
		return next
	}

	wrapped := func(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
		carrier := NewRecordCarrier(r)
		msg := defaultMarshaler.Unmarshal(r)

		_, span := tracer.StartProducerSpanWithCarrier(ctx, messagex.Topic(r.Topic), msg, carrier)
		completion := otelkafkax.NewCompletion(span)

		next(ctx, r, func(rec *kgo.Record, err error) {
			completion.Done(err)
			if promise != nil {
				promise(rec, err)
			}
		})
	}
	tracer.MarkWrapped(wrapped)
	return wrapped
}
