package logrusx

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Logger wraps a logrus entry so callers can attach OpenTelemetry
// attributes as log fields.
type Logger struct {
	*logrus.Entry
	name    string
	version string
}

func New(name string, version string, opts ...Option) *Logger {
	o := newOptions(opts...)

	l := logrus.New()
	l.SetLevel(o.level)
	l.SetFormatter(o.formatter)
	if o.output != nil {
		l.SetOutput(o.output)
	}

	return &Logger{
		Entry:   logrus.NewEntry(l),
		name:    name,
		version: version,
	}
}

// NewNull returns a logger that discards everything. Useful in tests.
func NewNull(name string, version string) *Logger {
	return New(name, version, WithOutput(io.Discard))
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Version() string {
	return l.version
}

func (l *Logger) Logrus() *logrus.Logger {
	return l.Entry.Logger
}

func (l *Logger) WithError(err error) *Logger {
	ll := *l
	ll.Entry = l.Entry.WithError(err)
	return &ll
}

func (l *Logger) WithFields(fields logrus.Fields) *Logger {
	ll := *l
	ll.Entry = l.Entry.WithFields(fields)
	return &ll
}

// NewLogFields converts OpenTelemetry attributes into logrus fields. Dots
// in attribute keys are flattened to "__" so log pipelines do not read them
// as nested paths.
func NewLogFields(kvs ...attribute.KeyValue) logrus.Fields {
	fields := make(logrus.Fields, len(kvs))
	for _, kv := range kvs {
		fields[strings.ReplaceAll(string(kv.Key), ".", "__")] = kv.Value.AsInterface()
	}
	return fields
}

type options struct {
	level     logrus.Level
	formatter logrus.Formatter
	output    io.Writer
}

type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{
		level:     logrus.InfoLevel,
		formatter: &logrus.JSONFormatter{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithLevel(level logrus.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

func WithFormatter(formatter logrus.Formatter) Option {
	return func(o *options) {
		o.formatter = formatter
	}
}

func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}
