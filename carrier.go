package otelkafkax

import (
	"go.opentelemetry.io/otel/propagation"

	"github.com/clinia/otelkafkax/messagex"
)

// MessageCarrier adapts a message header mapping to the propagation API.
// Header values may be binary; Get coerces them to text. A nil header map
// reads as empty: Get returns the zero value and Keys returns an empty
// slice, never an error.
type MessageCarrier struct {
	headers messagex.Headers
}

var _ propagation.TextMapCarrier = MessageCarrier{}

// NewMessageCarrier returns a carrier reading from and writing to headers.
func NewMessageCarrier(headers messagex.Headers) MessageCarrier {
	return MessageCarrier{headers: headers}
}

// Get returns the value associated with the passed key, coerced to a string.
func (c MessageCarrier) Get(key string) string {
	return string(c.headers[key])
}

// Set stores the key-value pair, overwriting any previous value. Writing to
// a carrier built over a nil header map is a no-op.
func (c MessageCarrier) Set(key string, value string) {
	if c.headers == nil {
		return
	}
	c.headers[key] = []byte(value)
}

// Keys lists the keys stored in the carrier.
func (c MessageCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for k := range c.headers {
		keys = append(keys, k)
	}
	return keys
}
