package otelkafkax

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/clinia/otelkafkax/messagex"
)

// MessageHandler processes a single delivered message.
type MessageHandler func(ctx context.Context, topic messagex.Topic, msg *messagex.Message) error

// BatchHandler processes one delivered batch of messages for a topic.
type BatchHandler func(ctx context.Context, topic messagex.Topic, msgs []*messagex.Message) error

// WrapMessageHandler decorates a per-message handler with a CONSUMER
// process span. The span's parent is the producer context extracted from
// the message headers; absent or malformed headers fall back to no parent.
// The handler runs under the caller's context with the new span active and
// its error is returned unchanged.
func (t *Tracer) WrapMessageHandler(next MessageHandler) MessageHandler {
	if next == nil || t.IsWrapped(next) {
		return next
	}

	wrapped := func(ctx context.Context, topic messagex.Topic, msg *messagex.Message) error {
		if msg == nil {
			return next(ctx, topic, msg)
		}

		parent := t.Extract(NewMessageCarrier(msg.Headers))
		_, span := t.StartConsumerSpan(parent, topic, msg, OperationProcess)

		hctx := trace.ContextWithSpan(ctx, span)
		return Finalize([]trace.Span{span}, func() error {
			return next(hctx, topic, msg)
		})
	}
	t.MarkWrapped(wrapped)
	return wrapped
}

// WrapBatchHandler decorates a batch handler with the batch span graph
// built by StartBatchSpans. The handler runs exactly once with the original
// arguments, under a context in which the receive span is active.
func (t *Tracer) WrapBatchHandler(next BatchHandler) BatchHandler {
	if next == nil || t.IsWrapped(next) {
		return next
	}

	wrapped := func(ctx context.Context, topic messagex.Topic, msgs []*messagex.Message) error {
		hctx, spans := t.StartBatchSpans(ctx, topic, msgs)
		return Finalize(spans, func() error {
			return next(hctx, topic, msgs)
		})
	}
	t.MarkWrapped(wrapped)
	return wrapped
}

// StartBatchSpans builds the span graph for a batch consume: one receive
// span covering the whole batch plus one process span per message. A batch
// has multiple independent producer origins, so each process span records
// its own message's producer context as a link rather than a parent, and no
// process span is a child of the receive span. The returned context carries
// the receive span as the active span for the batch handler's execution;
// the span slice places the receive span first.
func (t *Tracer) StartBatchSpans(ctx context.Context, topic messagex.Topic, msgs []*messagex.Message) (context.Context, []trace.Span) {
	_, receiveSpan := t.StartConsumerSpan(ctx, topic, nil, OperationReceive)

	spans := make([]trace.Span, 0, len(msgs)+1)
	spans = append(spans, receiveSpan)

	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		var links []trace.Link
		if link, ok := t.RemoteLink(NewMessageCarrier(msg.Headers)); ok {
			links = append(links, link)
		}
		_, span := t.StartConsumerSpan(ctx, topic, msg, OperationProcess, links...)
		spans = append(spans, span)
	}

	return trace.ContextWithSpan(ctx, receiveSpan), spans
}
