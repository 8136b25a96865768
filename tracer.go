package otelkafkax

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinia/otelkafkax/logrusx"
	"github.com/clinia/otelkafkax/messagex"
)

// Tracer creates and finalizes spans around intercepted producer and
// consumer operations. It never alters the wrapped operation's arguments,
// results, errors or panics; the only observable difference is the spans it
// emits and the propagation headers it adds to outgoing messages.
type Tracer struct {
	cfg     config
	wrapped wrappedSet
}

func NewTracer(opts ...Option) *Tracer {
	return &Tracer{cfg: newConfig(opts...)}
}

// Operation is the messaging operation a consumer span records.
type Operation string

const (
	// OperationProcess traces the handling of a single delivered message.
	OperationProcess Operation = "process"
	// OperationReceive traces the delivery of a batch as a whole.
	OperationReceive Operation = "receive"
)

func (o Operation) attr() attribute.KeyValue {
	if o == OperationReceive {
		return semconv.MessagingOperationReceive
	}
	return semconv.MessagingOperationProcess
}

// StartProducerSpan starts a PRODUCER span for a single outgoing message
// under the caller's context and injects the resulting context into the
// message headers, allocating the header map when absent. Ending the span
// is the caller's responsibility, normally through Finalize or a
// Completion.
func (t *Tracer) StartProducerSpan(ctx context.Context, topic messagex.Topic, msg *messagex.Message) (context.Context, trace.Span) {
	return t.StartProducerSpanWithCarrier(ctx, topic, msg, NewMessageCarrier(msg.EnsureHeaders()))
}

// StartProducerSpanWithCarrier is StartProducerSpan for callers whose
// propagation target is not a message header map, e.g. broker-native
// records. The message may be nil when the client exposes no per-message
// view; the producer hook then receives a nil message.
func (t *Tracer) StartProducerSpanWithCarrier(ctx context.Context, topic messagex.Topic, msg *messagex.Message, carrier propagation.TextMapCarrier) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("kafka"),
			semconv.MessagingDestinationKindTopic,
			semconv.MessagingDestinationName(string(topic)),
		),
	}

	msgctx, span := t.cfg.Tracer.Start(ctx, string(topic), opts...)
	t.applyModuleVersion(span)
	t.runHook(t.cfg.ProducerHook, span, topic, msg)

	if carrier != nil {
		t.cfg.Propagators.Inject(msgctx, carrier)
	}

	return msgctx, span
}

// StartConsumerSpan starts a CONSUMER span for the given operation. The
// caller decides the parent by choosing ctx: pass the context extracted
// from the message headers for a parent edge, or the ambient context plus a
// link for sibling causality. The consumer hook only runs when a message is
// present.
func (t *Tracer) StartConsumerSpan(ctx context.Context, topic messagex.Topic, msg *messagex.Message, operation Operation, links ...trace.Link) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("kafka"),
			semconv.MessagingDestinationKindTopic,
			semconv.MessagingDestinationName(string(topic)),
			operation.attr(),
		),
	}
	if len(links) > 0 {
		opts = append(opts, trace.WithLinks(links...))
	}

	msgctx, span := t.cfg.Tracer.Start(ctx, string(topic), opts...)
	t.applyModuleVersion(span)
	if msg != nil {
		t.runHook(t.cfg.ConsumerHook, span, topic, msg)
	}

	return msgctx, span
}

// Extract returns the remote context carried by the given carrier, decoded
// from an empty base context. Missing or malformed propagation data yields
// a context without a remote span, never an error.
func (t *Tracer) Extract(carrier propagation.TextMapCarrier) context.Context {
	return t.cfg.Propagators.Extract(context.Background(), carrier)
}

// Inject writes the propagation data of ctx into the carrier.
func (t *Tracer) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	t.cfg.Propagators.Inject(ctx, carrier)
}

// RemoteLink returns a span link to the producer context carried by the
// given carrier, when it holds one that identifies a remote span.
func (t *Tracer) RemoteLink(carrier propagation.TextMapCarrier) (trace.Link, bool) {
	sc := trace.SpanContextFromContext(t.Extract(carrier))
	if !sc.IsValid() {
		return trace.Link{}, false
	}
	return trace.Link{SpanContext: sc}, true
}

func (t *Tracer) applyModuleVersion(span trace.Span) {
	if t.cfg.ModuleVersionAttr == "" || t.cfg.ModuleVersion == "" {
		return
	}
	span.SetAttributes(attribute.String(t.cfg.ModuleVersionAttr, t.cfg.ModuleVersion))
}

// runHook isolates user-supplied hooks: a panic is recovered and logged so
// custom enrichment can never break the traced application.
func (t *Tracer) runHook(hook MessageHook, span trace.Span, topic messagex.Topic, msg *messagex.Message) {
	if hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.cfg.Logger.WithFields(logrusx.NewLogFields(
				semconv.MessagingDestinationName(string(topic)),
				semconv.ExceptionMessage(recoverMessage(r)),
			)).Errorf("message hook panicked")
		}
	}()
	hook(span, topic, msg)
}
