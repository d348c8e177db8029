package pubsub

import (
	"context"
	"sync"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventChannel represents a subscription channel
type EventChannel struct {
	ID     string
	Filter *EventFilter
	Events chan *domain.IngestionEvent
	Done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// EventFilter filters ingestion events
type EventFilter struct {
	Kinds []string // Filter by message kind (ingest, webhook)
	Shop  string   // Filter by shop domain
}

// EventPubSub fans ingestion outcomes out to live subscribers
type EventPubSub struct {
	mu         sync.RWMutex
	channels   map[string]*EventChannel
	bufferSize int
	logger     zerolog.Logger
}

var _ ports.EventPublisher = (*EventPubSub)(nil)

// NewEventPubSub creates a new event pub/sub system
func NewEventPubSub(logger zerolog.Logger) *EventPubSub {
	return &EventPubSub{
		channels:   make(map[string]*EventChannel),
		bufferSize: 32,
		logger:     logger,
	}
}

// Subscribe creates a subscription that lives until ctx is cancelled
func (ps *EventPubSub) Subscribe(ctx context.Context, filter *EventFilter) *EventChannel {
	subCtx, cancel := context.WithCancel(ctx)

	channel := &EventChannel{
		ID:     uuid.New().String(),
		Filter: filter,
		Events: make(chan *domain.IngestionEvent, ps.bufferSize),
		Done:   make(chan struct{}),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[channel.ID] = channel
	ps.mu.Unlock()

	ps.logger.Info().
		Str("channelId", channel.ID).
		Interface("filter", filter).
		Msg("Event subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(channel.ID)
	}()

	return channel
}

// Unsubscribe removes a subscription channel
func (ps *EventPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Events)
	close(channel.Done)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Info().
		Str("channelId", channelID).
		Msg("Event subscription removed")
}

// Publish broadcasts an event to all matching subscribers without blocking
func (ps *EventPubSub) Publish(event *domain.IngestionEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	published := 0
	for _, channel := range ps.channels {
		if !matchesFilter(event, channel.Filter) {
			continue
		}
		select {
		case channel.Events <- event:
			published++
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Msg("Channel buffer full, dropping event")
		}
	}

	if published > 0 {
		ps.logger.Debug().
			Str("subject", event.Subject).
			Int("subscribers", published).
			Msg("Published ingestion event to subscribers")
	}
}

func matchesFilter(event *domain.IngestionEvent, filter *EventFilter) bool {
	if filter == nil {
		return true
	}

	if len(filter.Kinds) > 0 {
		kindMatch := false
		for _, kind := range filter.Kinds {
			if event.Kind == kind {
				kindMatch = true
				break
			}
		}
		if !kindMatch {
			return false
		}
	}

	if filter.Shop != "" && event.ShopDomain != filter.Shop {
		return false
	}

	return true
}

// Subscribers returns the number of open event streams
func (ps *EventPubSub) Subscribers() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.channels)
}
