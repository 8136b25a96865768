package otelkafkax

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinia/otelkafkax/messagex"
)

func TestWrapIdempotence(t *testing.T) {
	t.Run("should return an already wrapped send unchanged", func(t *testing.T) {
		tracer, _ := newTestTracer(t)

		var next SendFunc = func(ctx context.Context, topic messagex.Topic, msgs ...*messagex.Message) error {
			return nil
		}

		wrapped := tracer.WrapSend(next)
		assert.False(t, tracer.IsWrapped(next))
		assert.True(t, tracer.IsWrapped(wrapped))

		rewrapped := tracer.WrapSend(wrapped)
		assert.Equal(t, reflect.ValueOf(wrapped).Pointer(), reflect.ValueOf(rewrapped).Pointer())
	})

	t.Run("should not double-trace after wrapping twice", func(t *testing.T) {
		tracer, sr := newTestTracer(t)

		send := tracer.WrapSend(func(ctx context.Context, topic messagex.Topic, msgs ...*messagex.Message) error {
			return nil
		})
		send = tracer.WrapSend(send)

		require.NoError(t, send(context.Background(), "orders", messagex.NewMessage(nil)))
		assert.Len(t, sr.Ended(), 1)
	})

	t.Run("should keep handlers idempotent too", func(t *testing.T) {
		tracer, sr := newTestTracer(t)

		handler := tracer.WrapMessageHandler(func(ctx context.Context, topic messagex.Topic, msg *messagex.Message) error {
			return nil
		})
		handler = tracer.WrapMessageHandler(handler)

		require.NoError(t, handler(context.Background(), "orders", messagex.NewMessage(nil)))
		assert.Len(t, sr.Ended(), 1)
	})

	t.Run("should pass nil functions through", func(t *testing.T) {
		tracer, _ := newTestTracer(t)

		assert.Nil(t, tracer.WrapSend(nil))
		assert.Nil(t, tracer.WrapSendBatch(nil))
		assert.Nil(t, tracer.WrapMessageHandler(nil))
		assert.Nil(t, tracer.WrapBatchHandler(nil))
	})

	t.Run("should report non-functions as unwrapped", func(t *testing.T) {
		tracer, _ := newTestTracer(t)

		assert.False(t, tracer.IsWrapped(nil))
		assert.False(t, tracer.IsWrapped("not a function"))
	})
}
