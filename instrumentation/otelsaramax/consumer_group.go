package otelsaramax

import (
	"github.com/IBM/sarama"

	"github.com/clinia/otelkafkax"
)

type consumerGroupHandler struct {
	sarama.ConsumerGroupHandler
	info   ConsumerInfo
	tracer *otelkafkax.Tracer
}

// ConsumeClaim wraps the claim so every message delivered through it is
// traced. It implements parts of `ConsumerGroupHandler`.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	dispatcher := newConsumerMessagesDispatcherWrapper(claim, h.info, h.tracer)
	go dispatcher.Run()
	claim = &consumerGroupClaim{
		ConsumerGroupClaim: claim,
		dispatcher:         dispatcher,
	}

	return h.ConsumerGroupHandler.ConsumeClaim(session, claim)
}

// WrapConsumerGroupHandler wraps a sarama.ConsumerGroupHandler causing each
// received message to be traced. Wrapping an already wrapped handler
// returns it unchanged.
func WrapConsumerGroupHandler(tracer *otelkafkax.Tracer, handler sarama.ConsumerGroupHandler, info ConsumerInfo) sarama.ConsumerGroupHandler {
	if wrapped, ok := handler.(*consumerGroupHandler); ok {
		return wrapped
	}

	return &consumerGroupHandler{
		ConsumerGroupHandler: handler,
		info:                 info,
		tracer:               tracer,
	}
}

type consumerGroupClaim struct {
	sarama.ConsumerGroupClaim
	dispatcher consumerMessagesDispatcher
}

func (c *consumerGroupClaim) Messages() <-chan *sarama.ConsumerMessage {
	return c.dispatcher.Messages()
}
