package otelkgox

import (
	"github.com/segmentio/ksuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/clinia/otelkafkax/messagex"
)

type Marshaler interface {
	// Marshal marshals a message into a Kafka record.
	Marshal(m *messagex.Message, topic string) (*kgo.Record, error)
}

type Unmarshaler interface {
	// Unmarshal converts a Kafka record back into a message. Any record is
	// a valid message, so there is no failure mode.
	Unmarshal(r *kgo.Record) *messagex.Message
}

type DefaultMarshaler struct{}

var (
	_                Marshaler   = (*DefaultMarshaler)(nil)
	_                Unmarshaler = (*DefaultMarshaler)(nil)
	defaultMarshaler             = &DefaultMarshaler{}
)

func (m *DefaultMarshaler) Marshal(msg *messagex.Message, topic string) (*kgo.Record, error) {
	headers := make([]kgo.RecordHeader, 0, len(msg.Headers)+1)

	setIDHeader := true
	for k, v := range msg.Headers {
		if k == messagex.IDHeaderKey {
			setIDHeader = false
			if msg.ID != "" {
				// The root ID wins over a stale header value.
				headers = append(headers, kgo.RecordHeader{
					Key:   messagex.IDHeaderKey,
					Value: []byte(msg.ID),
				})
				continue
			}
		}
		headers = append(headers, kgo.RecordHeader{
			Key:   k,
			Value: v,
		})
	}

	if msg.ID == "" {
		msg.ID = ksuid.New().String()
	}

	if setIDHeader {
		headers = append(headers, kgo.RecordHeader{
			Key:   messagex.IDHeaderKey,
			Value: []byte(msg.ID),
		})
	}

	return &kgo.Record{
		Topic:   topic,
		Headers: headers,
		Key:     msg.Key,
		Value:   msg.Payload,
	}, nil
}

// Unmarshal implements Unmarshaler.
func (m *DefaultMarshaler) Unmarshal(r *kgo.Record) *messagex.Message {
	msg := &messagex.Message{
		Headers: make(messagex.Headers, len(r.Headers)),
		Key:     r.Key,
		Payload: r.Value,
	}

	for _, header := range r.Headers {
		if header.Key == messagex.IDHeaderKey {
			msg.ID = string(header.Value)
			continue
		}

		msg.Headers[header.Key] = header.Value
	}

	return msg
}
