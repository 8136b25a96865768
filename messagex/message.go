package messagex

import (
	"github.com/segmentio/ksuid"
)

// IDHeaderKey is the header carrying the message identifier across the wire.
const IDHeaderKey = "_clinia_message_id"

// Headers is the message header mapping used as the propagation carrier.
// Values are raw bytes, as Kafka transports them; readers that need text
// coerce on access.
type Headers map[string][]byte

// Message is a single unit of work crossing the produce/consume boundary.
type Message struct {
	ID      string
	Key     []byte
	Headers Headers
	Payload []byte
}

// NewMessage creates a new Message with the given payload and options.
// A ksuid is generated when no ID is provided.
func NewMessage(payload []byte, opts ...newMessageOption) *Message {
	o := newMessageOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.id == "" {
		o.id = ksuid.New().String()
	}

	if o.headers == nil {
		o.headers = make(Headers)
	}

	return &Message{
		ID:      o.id,
		Key:     o.key,
		Headers: o.headers,
		Payload: payload,
	}
}

type newMessageOptions struct {
	id      string
	key     []byte
	headers Headers
}

type newMessageOption func(*newMessageOptions)

// WithID sets the ID of the message.
func WithID(id string) newMessageOption {
	return func(o *newMessageOptions) {
		o.id = id
	}
}

// WithKey sets the partition key of the message.
func WithKey(key []byte) newMessageOption {
	return func(o *newMessageOptions) {
		o.key = key
	}
}

// WithHeaders sets the headers of the message.
func WithHeaders(h Headers) newMessageOption {
	return func(o *newMessageOptions) {
		o.headers = h
	}
}

// EnsureHeaders returns the message's header mapping, allocating it first
// when the message was built without one. Trace context injection relies on
// this so every outgoing message has a writable carrier.
func (m *Message) EnsureHeaders() Headers {
	if m.Headers == nil {
		m.Headers = make(Headers)
	}
	return m.Headers
}

func (m *Message) Copy() *Message {
	newMessage := Message{
		ID:      m.ID,
		Key:     make([]byte, len(m.Key)),
		Headers: Headers{},
		Payload: make([]byte, len(m.Payload)),
	}

	copy(newMessage.Key, m.Key)
	copy(newMessage.Payload, m.Payload)

	for key, value := range m.Headers {
		v := make([]byte, len(value))
		copy(v, value)
		newMessage.Headers[key] = v
	}

	return &newMessage
}
