package otelsaramax

import (
	"strconv"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/clinia/otelkafkax"
	"github.com/clinia/otelkafkax/messagex"
)

// ConsumerInfo describes the consuming side. Its attributes are applied to
// every span the wrapped consumer produces.
type ConsumerInfo struct {
	ConsumerGroup string
	Attributes    []attribute.KeyValue
}

func (i ConsumerInfo) attrs() []attribute.KeyValue {
	if i.ConsumerGroup == "" {
		return i.Attributes
	}
	return append([]attribute.KeyValue{
		semconv.MessagingKafkaConsumerGroup(i.ConsumerGroup),
	}, i.Attributes...)
}

type consumerMessagesDispatcher interface {
	Messages() <-chan *sarama.ConsumerMessage
}

type consumerMessagesDispatcherWrapper struct {
	d        consumerMessagesDispatcher
	info     ConsumerInfo
	tracer   *otelkafkax.Tracer
	messages chan *sarama.ConsumerMessage
}

func newConsumerMessagesDispatcherWrapper(d consumerMessagesDispatcher, info ConsumerInfo, tracer *otelkafkax.Tracer) *consumerMessagesDispatcherWrapper {
	return &consumerMessagesDispatcherWrapper{
		d:        d,
		info:     info,
		tracer:   tracer,
		messages: make(chan *sarama.ConsumerMessage),
	}
}

// Messages returns the read channel for the messages that are returned by
// the broker.
func (w *consumerMessagesDispatcherWrapper) Messages() <-chan *sarama.ConsumerMessage {
	return w.messages
}

func (w *consumerMessagesDispatcherWrapper) Run() {
	msgs := w.d.Messages()

	for msg := range msgs {
		carrier := NewConsumerMessageCarrier(msg)

		// The producer-side context travels in the message headers.
		parent := w.tracer.Extract(carrier)
		newCtx, span := w.tracer.StartConsumerSpan(parent, messagex.Topic(msg.Topic), consumerMessageView(msg), otelkafkax.OperationReceive)
		span.SetAttributes(append(w.info.attrs(),
			semconv.MessagingMessageID(strconv.FormatInt(msg.Offset, 10)),
			semconv.MessagingKafkaSourcePartition(int(msg.Partition)),
		)...)

		// Inject the receive context so downstream processing can continue
		// the chain from the message headers.
		w.tracer.Inject(newCtx, carrier)

		w.messages <- msg

		span.End()
	}
	close(w.messages)
}

type partitionConsumer struct {
	sarama.PartitionConsumer
	dispatcher consumerMessagesDispatcher
}

// Messages returns the read channel for the messages that are returned by
// the broker.
func (pc *partitionConsumer) Messages() <-chan *sarama.ConsumerMessage {
	return pc.dispatcher.Messages()
}

// WrapPartitionConsumer wraps a sarama.PartitionConsumer causing each
// received message to be traced.
func WrapPartitionConsumer(tracer *otelkafkax.Tracer, pc sarama.PartitionConsumer, info ConsumerInfo) sarama.PartitionConsumer {
	if wrapped, ok := pc.(*partitionConsumer); ok {
		return wrapped
	}

	dispatcher := newConsumerMessagesDispatcherWrapper(pc, info, tracer)
	go dispatcher.Run()
	return &partitionConsumer{
		PartitionConsumer: pc,
		dispatcher:        dispatcher,
	}
}

type consumer struct {
	sarama.Consumer
	info   ConsumerInfo
	tracer *otelkafkax.Tracer
}

// ConsumePartition invokes Consumer.ConsumePartition and wraps the
// resulting PartitionConsumer.
func (c *consumer) ConsumePartition(topic string, partition int32, offset int64) (sarama.PartitionConsumer, error) {
	pc, err := c.Consumer.ConsumePartition(topic, partition, offset)
	if err != nil {
		return nil, err
	}
	return WrapPartitionConsumer(c.tracer, pc, c.info), nil
}

// WrapConsumer wraps a sarama.Consumer wrapping any PartitionConsumer
// created via Consumer.ConsumePartition.
func WrapConsumer(tracer *otelkafkax.Tracer, c sarama.Consumer, info ConsumerInfo) sarama.Consumer {
	if wrapped, ok := c.(*consumer); ok {
		return wrapped
	}
	return &consumer{
		Consumer: c,
		info:     info,
		tracer:   tracer,
	}
}
