package otelkafkax

import (
	"sync"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Finalize runs op to completion and settles every span in spans. On a
// non-nil error or a panic, each span's status is set to Error with a
// best-effort message before any span is ended, and the error value or the
// panic is surfaced unchanged. Every span is ended exactly once, on exactly
// one outcome path, including when op panics before returning.
func Finalize(spans []trace.Span, op func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			failSpans(spans, recoverMessage(r))
			endSpans(spans)
			panic(r)
		}
	}()

	err = op()
	if err != nil {
		failSpans(spans, err.Error())
	}
	endSpans(spans)
	return err
}

// Completion settles a span set from promise-style callbacks, e.g. an
// asynchronous produce acknowledgement. Done may be called from any
// goroutine; only the first call has an effect, so a client invoking its
// promise more than once cannot double-end a span.
type Completion struct {
	once  sync.Once
	spans []trace.Span
}

func NewCompletion(spans ...trace.Span) *Completion {
	return &Completion{spans: spans}
}

// Done records the outcome of the traced operation and ends every span.
// A non-nil err sets the Error status before any span is ended.
func (c *Completion) Done(err error) {
	c.once.Do(func() {
		if err != nil {
			failSpans(c.spans, err.Error())
		}
		endSpans(c.spans)
	})
}

func failSpans(spans []trace.Span, message string) {
	for _, span := range spans {
		span.SetStatus(codes.Error, message)
	}
}

func endSpans(spans []trace.Span) {
	for _, span := range spans {
		span.End()
	}
}

// recoverMessage derives a best-effort status message from a recovered
// panic value. Values that are neither text nor errors yield an empty
// message; the Error status is still recorded.
func recoverMessage(r any) string {
	switch v := r.(type) {
	case string:
		return v
	case error:
		return v.Error()
	default:
		return ""
	}
}
