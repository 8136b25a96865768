package otelkafkax

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinia/otelkafkax/logrusx"
	"github.com/clinia/otelkafkax/messagex"
)

const defaultTracerName = "github.com/clinia/otelkafkax"

// MessageHook is invoked right after a span is started, with the message the
// span traces. Hooks run synchronously at span creation; a panicking hook is
// recovered and logged, never propagated to the traced operation.
//
// The message may be nil when the instrumented client exposes no per-message
// view (adapters document this).
type MessageHook func(span trace.Span, topic messagex.Topic, msg *messagex.Message)

type config struct {
	TracerProvider trace.TracerProvider
	Tracer         trace.Tracer
	Propagators    propagation.TextMapPropagator
	Logger         *logrusx.Logger

	ProducerHook MessageHook
	ConsumerHook MessageHook

	// ModuleVersionAttr names the span attribute carrying the instrumented
	// client's version. The attribute is only applied when both the name and
	// a captured version are present.
	ModuleVersionAttr string
	ModuleVersion     string
}

func newConfig(opts ...Option) config {
	cfg := config{
		Propagators:    otel.GetTextMapPropagator(),
		TracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&cfg)
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = logrusx.New(defaultTracerName, Version())
	}

	cfg.Tracer = cfg.TracerProvider.Tracer(defaultTracerName,
		trace.WithInstrumentationVersion(Version()))

	return cfg
}

// Option interface used for setting optional config properties.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithTracerProvider specifies a tracer provider to use for creating a tracer.
// If none is specified, the global provider is used.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return optionFunc(func(cfg *config) {
		if provider != nil {
			cfg.TracerProvider = provider
		}
	})
}

// WithPropagators specifies propagators to use for extracting
// information from the message headers. If none are specified, global
// ones will be used.
func WithPropagators(propagators propagation.TextMapPropagator) Option {
	return optionFunc(func(cfg *config) {
		if propagators != nil {
			cfg.Propagators = propagators
		}
	})
}

// WithLogger specifies the logger used for diagnostic output. Tracing
// failures are logged there and never surfaced to the traced application.
func WithLogger(l *logrusx.Logger) Option {
	return optionFunc(func(cfg *config) {
		if l != nil {
			cfg.Logger = l
		}
	})
}

// WithProducerHook registers a hook invoked with every started producer span.
func WithProducerHook(hook MessageHook) Option {
	return optionFunc(func(cfg *config) {
		cfg.ProducerHook = hook
	})
}

// WithConsumerHook registers a hook invoked with every started consumer span
// that traces a concrete message. The synthetic batch receive span has no
// single message and skips the hook.
func WithConsumerHook(hook MessageHook) Option {
	return optionFunc(func(cfg *config) {
		cfg.ConsumerHook = hook
	})
}

// WithModuleVersion records the instrumented client library's version so it
// can be attached to every span under the given attribute name. Both values
// must be non-empty for the attribute to be applied.
func WithModuleVersion(attributeName string, version string) Option {
	return optionFunc(func(cfg *config) {
		cfg.ModuleVersionAttr = attributeName
		cfg.ModuleVersion = version
	})
}
