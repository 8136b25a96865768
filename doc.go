// Package otelkafkax traces Kafka produce and consume operations with
// OpenTelemetry. It decorates producer sends and consumer callbacks with
// spans, carries trace context through message headers across the broker,
// and finalizes every span exactly once when the wrapped operation settles,
// all without changing the operation's arguments, results, errors or
// panics.
//
// The package does not talk to a broker itself. Client-specific adapters
// live under instrumentation/; the core operates on the messagex message
// model and on the decorator functions the host substitutes for the
// original producer and consumer entry points.
package otelkafkax
