// Package messaging carries ingestion work over NATS JetStream.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// BusConfig names the stream and durable consumer the pipeline runs on
type BusConfig struct {
	URL             string
	Stream          string
	Consumer        string
	DuplicateWindow time.Duration
	AckWait         time.Duration
}

// Subjects returns the subject filters covering both message families
func Subjects() []string {
	return []string{domain.SubjectPrefixIngest + ".>", domain.SubjectPrefixWebhook + ".>"}
}

// JetStreamBus publishes onto the ingestion stream and hands out its durable consumer
type JetStreamBus struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	cfg    BusConfig
	logger zerolog.Logger
}

var _ ports.Publisher = (*JetStreamBus)(nil)

// Connect dials NATS and opens a JetStream context
func Connect(cfg BusConfig, logger zerolog.Logger) (*JetStreamBus, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("shopify-ingest"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewJetStreamBus(nc, cfg, logger)
}

// NewJetStreamBus wraps an existing connection
func NewJetStreamBus(nc *nats.Conn, cfg BusConfig, logger zerolog.Logger) (*JetStreamBus, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = 2 * time.Minute
	}
	if cfg.AckWait <= 0 {
		cfg.AckWait = time.Minute
	}
	return &JetStreamBus{nc: nc, js: js, cfg: cfg, logger: logger}, nil
}

// EnsureStream creates the ingestion stream when it does not exist yet
func (b *JetStreamBus) EnsureStream(ctx context.Context) error {
	_, err := b.js.Stream(ctx, b.cfg.Stream)
	if err == nil {
		b.logger.Info().Str("stream", b.cfg.Stream).Msg("JetStream stream found")
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err = b.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:       b.cfg.Stream,
		Subjects:   Subjects(),
		Storage:    jetstream.FileStorage,
		Duplicates: b.cfg.DuplicateWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	b.logger.Info().
		Str("stream", b.cfg.Stream).
		Strs("subjects", Subjects()).
		Msg("JetStream stream created")
	return nil
}

// EnsureConsumer creates or updates the durable pull consumer over both subject families
func (b *JetStreamBus) EnsureConsumer(ctx context.Context) (jetstream.Consumer, error) {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.cfg.Stream, jetstream.ConsumerConfig{
		Durable:        b.cfg.Consumer,
		AckPolicy:      jetstream.AckExplicitPolicy,
		AckWait:        b.cfg.AckWait,
		FilterSubjects: Subjects(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	return consumer, nil
}

// Publish stores a message on the stream. A non-empty msgID is sent as
// Nats-Msg-Id so the stream drops redeliveries inside its duplicate window.
func (b *JetStreamBus) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	var opts []jetstream.PublishOpt
	if msgID != "" {
		opts = append(opts, jetstream.WithMsgID(msgID))
	}
	ack, err := b.js.Publish(ctx, subject, data, opts...)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	b.logger.Debug().
		Str("subject", subject).
		Uint64("seq", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("Published message")
	return nil
}

// Close drains the connection, flushing pending publishes
func (b *JetStreamBus) Close() error {
	return b.nc.Drain()
}
