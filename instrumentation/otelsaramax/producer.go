package otelsaramax

import (
	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinia/otelkafkax"
	"github.com/clinia/otelkafkax/messagex"
)

// WrapSyncProducer wraps a sarama.SyncProducer so that every sent message
// gets its own producer span and injected trace headers. A caller that
// wants the send parented to its current span injects its context into the
// message headers before sending. Wrapping an already wrapped producer
// returns it unchanged.
func WrapSyncProducer(tracer *otelkafkax.Tracer, producer sarama.SyncProducer) sarama.SyncProducer {
	if wrapped, ok := producer.(*syncProducer); ok {
		return wrapped
	}
	return &syncProducer{
		SyncProducer: producer,
		tracer:       tracer,
	}
}

type syncProducer struct {
	sarama.SyncProducer
	tracer *otelkafkax.Tracer
}

func (p *syncProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	span := p.startSpan(msg)

	var partition int32
	var offset int64
	err := otelkafkax.Finalize([]trace.Span{span}, func() error {
		var sendErr error
		partition, offset, sendErr = p.SyncProducer.SendMessage(msg)
		return sendErr
	})
	return partition, offset, err
}

func (p *syncProducer) SendMessages(msgs []*sarama.ProducerMessage) error {
	spans := make([]trace.Span, 0, len(msgs))
	for _, msg := range msgs {
		spans = append(spans, p.startSpan(msg))
	}

	return otelkafkax.Finalize(spans, func() error {
		return p.SyncProducer.SendMessages(msgs)
	})
}

func (p *syncProducer) startSpan(msg *sarama.ProducerMessage) trace.Span {
	carrier := NewProducerMessageCarrier(msg)
	ctx := p.tracer.Extract(carrier)
	_, span := p.tracer.StartProducerSpanWithCarrier(ctx, messagex.Topic(msg.Topic), producerMessageView(msg), carrier)
	return span
}
