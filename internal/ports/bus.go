package ports

import (
	"context"
	"time"

	"shopify-ingest/internal/domain"
)

// Message is the part of a bus message the dispatcher reads
type Message interface {
	Subject() string
	Data() []byte
}

// Publisher publishes onto the ingestion stream.
// A non-empty msgID lets the stream drop duplicates inside its dedup window.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte, msgID string) error
}

// EventPublisher broadcasts ingestion outcomes to live subscribers
type EventPublisher interface {
	Publish(event *domain.IngestionEvent)
}

// AckAction is how a processed message is settled on the bus
type AckAction int

const (
	Ack AckAction = iota
	NakWithDelay
	Terminate
)

func (a AckAction) String() string {
	switch a {
	case Ack:
		return "ack"
	case NakWithDelay:
		return "nak"
	case Terminate:
		return "term"
	default:
		return "unknown"
	}
}

// Outcome is the settlement decision for one message.
// Delay applies to NakWithDelay, Reason to Terminate.
type Outcome struct {
	Action AckAction
	Delay  time.Duration
	Reason string
}

// MessageHandler decides the outcome of a message; it never settles it itself
type MessageHandler interface {
	Dispatch(ctx context.Context, msg Message) Outcome
}
