package otelkafkax

import (
	"context"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinia/otelkafkax/messagex"
)

// SendFunc produces one or more messages to a single topic.
type SendFunc func(ctx context.Context, topic messagex.Topic, msgs ...*messagex.Message) error

// SendBatchFunc produces a batch of messages grouped by topic in one call.
type SendBatchFunc func(ctx context.Context, batch ...messagex.TopicMessages) error

// WrapSend decorates a send so every outgoing message gets its own PRODUCER
// span and injected trace headers before next runs. The call's arguments,
// result and timing are untouched; next is invoked exactly once with the
// original values, nil entries included. Wrapping an already wrapped send
// returns it unchanged.
func (t *Tracer) WrapSend(next SendFunc) SendFunc {
	if next == nil || t.IsWrapped(next) {
		return next
	}

	wrapped := func(ctx context.Context, topic messagex.Topic, msgs ...*messagex.Message) error {
		spans := make([]trace.Span, 0, len(msgs))
		for _, msg := range msgs {
			if msg == nil {
				continue
			}
			_, span := t.StartProducerSpan(ctx, topic, msg)
			spans = append(spans, span)
		}

		return Finalize(spans, func() error {
			return next(ctx, topic, msgs...)
		})
	}
	t.MarkWrapped(wrapped)
	return wrapped
}

// WrapSendBatch decorates a batch send. The topic groups are flattened in
// order, group order first and per-group message order second, into one
// PRODUCER span per non-nil message; next then runs exactly once with the
// original, unmodified batch.
func (t *Tracer) WrapSendBatch(next SendBatchFunc) SendBatchFunc {
	if next == nil || t.IsWrapped(next) {
		return next
	}

	wrapped := func(ctx context.Context, batch ...messagex.TopicMessages) error {
		spans := lo.FlatMap(batch, func(group messagex.TopicMessages, _ int) []trace.Span {
			return lo.FilterMap(group.Messages, func(msg *messagex.Message, _ int) (trace.Span, bool) {
				if msg == nil {
					return nil, false
				}
				_, span := t.StartProducerSpan(ctx, group.Topic, msg)
				return span, true
			})
		})

		return Finalize(spans, func() error {
			return next(ctx, batch...)
		})
	}
	t.MarkWrapped(wrapped)
	return wrapped
}
