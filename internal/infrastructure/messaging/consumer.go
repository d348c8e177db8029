package messaging

import (
	"context"
	"errors"
	"time"

	"shopify-ingest/internal/ports"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// Settler is the part of a delivered message the consumer settles
type Settler interface {
	ports.Message
	Ack() error
	NakWithDelay(delay time.Duration) error
	TermWithReason(reason string) error
}

// Consumer pulls one message at a time from the durable consumer and settles
// it with the handler's outcome before pulling the next.
type Consumer struct {
	consumer       jetstream.Consumer
	handler        ports.MessageHandler
	messageTimeout time.Duration
	logger         zerolog.Logger
}

func NewConsumer(consumer jetstream.Consumer, handler ports.MessageHandler, messageTimeout time.Duration, logger zerolog.Logger) *Consumer {
	if messageTimeout <= 0 {
		messageTimeout = 45 * time.Second
	}
	return &Consumer{
		consumer:       consumer,
		handler:        handler,
		messageTimeout: messageTimeout,
		logger:         logger,
	}
}

// Run blocks until ctx is cancelled. The message in flight at cancellation is
// still settled before Run returns.
func (c *Consumer) Run(ctx context.Context) error {
	iter, err := c.consumer.Messages(jetstream.PullMaxMessages(1))
	if err != nil {
		return err
	}
	defer iter.Stop()

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			iter.Stop()
		case <-stopped:
		}
	}()

	c.logger.Info().Msg("Ingestion worker started")
	for {
		msg, err := iter.Next()
		if err != nil {
			if errors.Is(err, jetstream.ErrMsgIteratorClosed) || ctx.Err() != nil {
				c.logger.Info().Msg("Ingestion worker stopped")
				return nil
			}
			c.logger.Error().Err(err).Msg("Failed to pull message")
			continue
		}
		c.Process(ctx, msg)
	}
}

// Process dispatches one message and settles it
func (c *Consumer) Process(ctx context.Context, msg Settler) {
	msgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.messageTimeout)
	defer cancel()

	outcome := c.handler.Dispatch(msgCtx, msg)

	var err error
	switch outcome.Action {
	case ports.Ack:
		err = msg.Ack()
	case ports.NakWithDelay:
		err = msg.NakWithDelay(outcome.Delay)
	case ports.Terminate:
		err = msg.TermWithReason(outcome.Reason)
	}
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("subject", msg.Subject()).
			Str("action", outcome.Action.String()).
			Msg("Failed to settle message")
	}
}
