package otelkgox

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/clinia/otelkafkax"
	"github.com/clinia/otelkafkax/messagex"
)

// RecordBatchHandler processes one polled batch of records for a topic.
type RecordBatchHandler func(ctx context.Context, topic messagex.Topic, records []*kgo.Record) error

// WrapRecordBatchHandler decorates a batch handler with the batch span
// graph: one receive span for the batch plus one process span per record,
// each linked to the producer context found in that record's headers. The
// handler runs exactly once with the original records, under a context in
// which the receive span is active. Wrapping an already wrapped handler
// returns it unchanged.
func WrapRecordBatchHandler(tracer *otelkafkax.Tracer, next RecordBatchHandler) RecordBatchHandler {
	if next == nil || tracer.IsWrapped(next) {
		return next
	}

	wrapped := func(ctx context.Context, topic messagex.Topic, records []*kgo.Record) error {
		msgs := make([]*messagex.Message, 0, len(records))
		for _, r := range records {
			msgs = append(msgs, defaultMarshaler.Unmarshal(r))
		}

		hctx, spans := tracer.StartBatchSpans(ctx, topic, msgs)
		return otelkafkax.Finalize(spans, func() error {
			return next(hctx, topic, records)
		})
	}
	tracer.MarkWrapped(wrapped)
	return wrapped
}

// HandleFetches dispatches polled fetches to a batch handler, one
// invocation per fetched topic. Handler errors are joined; fetch errors are
// reported through the returned error as well so callers can stop polling
// on non-retriable failures.
func HandleFetches(ctx context.Context, fetches kgo.Fetches, handler RecordBatchHandler) error {
	errs := make([]error, 0, len(fetches))
	for _, fetchErr := range fetches.Errors() {
		errs = append(errs, fetchErr.Err)
	}

	fetches.EachTopic(func(tp kgo.FetchTopic) {
		records := tp.Records()
		if len(records) == 0 {
			return
		}
		if err := handler(ctx, messagex.Topic(tp.Topic), records); err != nil {
			errs = append(errs, err)
		}
	})

	return errors.Join(errs...)
}
