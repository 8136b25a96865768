package otelsaramax

import (
	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel/propagation"

	"github.com/clinia/otelkafkax/messagex"
)

// ProducerMessageCarrier injects and extracts propagation data from a
// sarama.ProducerMessage.
type ProducerMessageCarrier struct {
	msg *sarama.ProducerMessage
}

var _ propagation.TextMapCarrier = (*ProducerMessageCarrier)(nil)

// NewProducerMessageCarrier creates a new ProducerMessageCarrier.
func NewProducerMessageCarrier(msg *sarama.ProducerMessage) ProducerMessageCarrier {
	return ProducerMessageCarrier{msg: msg}
}

// Get retrieves a single value for a given key.
func (c ProducerMessageCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set sets a header, replacing any existing value for the key.
func (c ProducerMessageCarrier) Set(key, value string) {
	for i := 0; i < len(c.msg.Headers); i++ {
		if string(c.msg.Headers[i].Key) == key {
			c.msg.Headers = append(c.msg.Headers[:i], c.msg.Headers[i+1:]...)
			i--
		}
	}
	c.msg.Headers = append(c.msg.Headers, sarama.RecordHeader{
		Key:   []byte(key),
		Value: []byte(value),
	})
}

// Keys returns a slice of all key identifiers in the carrier.
func (c ProducerMessageCarrier) Keys() []string {
	out := make([]string, len(c.msg.Headers))
	for i, h := range c.msg.Headers {
		out[i] = string(h.Key)
	}
	return out
}

// ConsumerMessageCarrier injects and extracts propagation data from a
// sarama.ConsumerMessage.
type ConsumerMessageCarrier struct {
	msg *sarama.ConsumerMessage
}

var _ propagation.TextMapCarrier = (*ConsumerMessageCarrier)(nil)

// NewConsumerMessageCarrier creates a new ConsumerMessageCarrier.
func NewConsumerMessageCarrier(msg *sarama.ConsumerMessage) ConsumerMessageCarrier {
	return ConsumerMessageCarrier{msg: msg}
}

// Get retrieves a single value for a given key.
func (c ConsumerMessageCarrier) Get(key string) string {
	for _, h := range c.msg.Headers {
		if h != nil && string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set sets a header, replacing any existing value for the key.
func (c ConsumerMessageCarrier) Set(key, value string) {
	for i := 0; i < len(c.msg.Headers); i++ {
		if c.msg.Headers[i] != nil && string(c.msg.Headers[i].Key) == key {
			c.msg.Headers = append(c.msg.Headers[:i], c.msg.Headers[i+1:]...)
			i--
		}
	}
	c.msg.Headers = append(c.msg.Headers, &sarama.RecordHeader{
		Key:   []byte(key),
		Value: []byte(value),
	})
}

// Keys returns a slice of all key identifiers in the carrier.
func (c ConsumerMessageCarrier) Keys() []string {
	out := make([]string, 0, len(c.msg.Headers))
	for _, h := range c.msg.Headers {
		if h == nil {
			continue
		}
		out = append(out, string(h.Key))
	}
	return out
}

// producerMessageView exposes a sarama producer message to hooks through
// the messagex model. The view is read-only: mutating it does not touch the
// sarama message.
func producerMessageView(msg *sarama.ProducerMessage) *messagex.Message {
	m := &messagex.Message{Headers: make(messagex.Headers, len(msg.Headers))}
	for _, h := range msg.Headers {
		m.Headers[string(h.Key)] = h.Value
	}
	m.ID = string(m.Headers[messagex.IDHeaderKey])
	if msg.Key != nil {
		if b, err := msg.Key.Encode(); err == nil {
			m.Key = b
		}
	}
	if msg.Value != nil {
		if b, err := msg.Value.Encode(); err == nil {
			m.Payload = b
		}
	}
	return m
}

func consumerMessageView(msg *sarama.ConsumerMessage) *messagex.Message {
	m := &messagex.Message{
		Key:     msg.Key,
		Payload: msg.Value,
		Headers: make(messagex.Headers, len(msg.Headers)),
	}
	for _, h := range msg.Headers {
		if h == nil {
			continue
		}
		m.Headers[string(h.Key)] = h.Value
	}
	m.ID = string(m.Headers[messagex.IDHeaderKey])
	return m
}
