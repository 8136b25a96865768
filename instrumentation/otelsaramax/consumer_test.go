package otelsaramax

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

type fakeDispatcher struct {
	messages chan *sarama.ConsumerMessage
}

func (d *fakeDispatcher) Messages() <-chan *sarama.ConsumerMessage {
	return d.messages
}

func TestConsumerMessagesDispatcher(t *testing.T) {
	tracer, sr := newTestTracer(t)

	remote := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10},
		SpanID:     trace.SpanID{0x0a, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})

	msg := &sarama.ConsumerMessage{
		Topic:     "orders",
		Partition: 3,
		Offset:    17,
	}
	ctx := trace.ContextWithSpanContext(context.Background(), remote)
	(propagation.TraceContext{}).Inject(ctx, NewConsumerMessageCarrier(msg))

	src := &fakeDispatcher{messages: make(chan *sarama.ConsumerMessage, 1)}
	wrapper := newConsumerMessagesDispatcherWrapper(src, ConsumerInfo{ConsumerGroup: "billing"}, tracer)
	go wrapper.Run()

	src.messages <- msg
	close(src.messages)

	var got *sarama.ConsumerMessage
	select {
	case got = <-wrapper.Messages():
	case <-time.After(5 * time.Second):
		t.Fatal("no message dispatched")
	}
	assert.Same(t, msg, got)

	// Draining the source closes the wrapped channel and ends the span.
	select {
	case _, open := <-wrapper.Messages():
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher channel not closed")
	}

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "orders", span.Name())
	assert.Equal(t, trace.SpanKindConsumer, span.SpanKind())
	assert.Equal(t, remote.TraceID(), span.SpanContext().TraceID())
	assert.Equal(t, remote.SpanID(), span.Parent().SpanID())
	assert.Contains(t, span.Attributes(), semconv.MessagingOperationReceive)
	assert.Contains(t, span.Attributes(), semconv.MessagingKafkaConsumerGroup("billing"))
	assert.Contains(t, span.Attributes(), semconv.MessagingMessageID(strconv.FormatInt(msg.Offset, 10)))
	assert.Contains(t, span.Attributes(), semconv.MessagingKafkaSourcePartition(3))

	// The receive context is injected back so downstream handling can chain
	// off the receive span.
	traceparent := NewConsumerMessageCarrier(got).Get("traceparent")
	assert.Contains(t, traceparent, span.SpanContext().SpanID().String())
}

func TestConsumerMessagesDispatcherNoRemoteContext(t *testing.T) {
	tracer, sr := newTestTracer(t)

	src := &fakeDispatcher{messages: make(chan *sarama.ConsumerMessage, 1)}
	wrapper := newConsumerMessagesDispatcherWrapper(src, ConsumerInfo{}, tracer)
	go wrapper.Run()

	src.messages <- &sarama.ConsumerMessage{Topic: "orders"}
	close(src.messages)

	<-wrapper.Messages()
	<-wrapper.Messages()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.False(t, spans[0].Parent().IsValid())
}

func TestWrapConsumerConsumePartition(t *testing.T) {
	tracer, _ := newTestTracer(t)

	mockConsumer := mocks.NewConsumer(t, sarama.NewConfig())
	mockConsumer.ExpectConsumePartition("orders", 0, 0)

	consumer := WrapConsumer(tracer, mockConsumer, ConsumerInfo{})
	_, err := consumer.ConsumePartition("orders", 0, 0)
	assert.NoError(t, err)
	// Consume twice
	_, err = consumer.ConsumePartition("orders", 0, 0)
	assert.Error(t, err)
}

func TestWrapPartitionConsumerIdempotent(t *testing.T) {
	tracer, _ := newTestTracer(t)

	src := &fakePartitionConsumer{messages: make(chan *sarama.ConsumerMessage)}
	close(src.messages)

	pc := WrapPartitionConsumer(tracer, src, ConsumerInfo{})
	assert.Same(t, pc, WrapPartitionConsumer(tracer, pc, ConsumerInfo{}))
}

func TestWrapConsumerIdempotent(t *testing.T) {
	tracer, _ := newTestTracer(t)

	c := WrapConsumer(tracer, &fakeConsumer{}, ConsumerInfo{})
	assert.Same(t, c, WrapConsumer(tracer, c, ConsumerInfo{}))
}

func TestWrapConsumerGroupHandlerIdempotent(t *testing.T) {
	tracer, _ := newTestTracer(t)

	h := WrapConsumerGroupHandler(tracer, &fakeConsumerGroupHandler{}, ConsumerInfo{})
	assert.Same(t, h, WrapConsumerGroupHandler(tracer, h, ConsumerInfo{}))
}

type fakePartitionConsumer struct {
	sarama.PartitionConsumer
	messages chan *sarama.ConsumerMessage
}

func (pc *fakePartitionConsumer) Messages() <-chan *sarama.ConsumerMessage {
	return pc.messages
}

type fakeConsumer struct {
	sarama.Consumer
}

type fakeConsumerGroupHandler struct {
	sarama.ConsumerGroupHandler
}
