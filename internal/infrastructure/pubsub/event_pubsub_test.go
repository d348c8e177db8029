package pubsub

import (
	"context"
	"testing"
	"time"

	"shopify-ingest/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPubSub_FilterByShop(t *testing.T) {
	ps := NewEventPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all := ps.Subscribe(ctx, nil)
	demo := ps.Subscribe(ctx, &EventFilter{Shop: "demo.myshopify.com"})

	ps.Publish(&domain.IngestionEvent{Kind: "webhook", ShopDomain: "other.myshopify.com", Outcome: "ack"})
	ps.Publish(&domain.IngestionEvent{Kind: "webhook", ShopDomain: "demo.myshopify.com", Outcome: "ack"})

	assert.Len(t, all.Events, 2)
	require.Len(t, demo.Events, 1)
	got := <-demo.Events
	assert.Equal(t, "demo.myshopify.com", got.ShopDomain)
}

func TestEventPubSub_FilterByKind(t *testing.T) {
	ps := NewEventPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := ps.Subscribe(ctx, &EventFilter{Kinds: []string{"ingest"}})
	ps.Publish(&domain.IngestionEvent{Kind: "webhook"})
	ps.Publish(&domain.IngestionEvent{Kind: "ingest"})

	require.Len(t, sub.Events, 1)
	assert.Equal(t, "ingest", (<-sub.Events).Kind)
}

func TestEventPubSub_UnsubscribeOnCancel(t *testing.T) {
	ps := NewEventPubSub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	sub := ps.Subscribe(ctx, nil)
	assert.Equal(t, 1, ps.Subscribers())

	cancel()
	select {
	case <-sub.Done:
	case <-time.After(time.Second):
		t.Fatal("subscription not removed after cancel")
	}
	assert.Equal(t, 0, ps.Subscribers())

	// publishing after removal must not panic on the closed channel
	ps.Publish(&domain.IngestionEvent{Kind: "ingest"})
}

func TestEventPubSub_FullBufferDrops(t *testing.T) {
	ps := NewEventPubSub(zerolog.Nop())
	ps.bufferSize = 1
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := ps.Subscribe(ctx, nil)
	ps.Publish(&domain.IngestionEvent{Kind: "ingest"})
	ps.Publish(&domain.IngestionEvent{Kind: "ingest"})
	assert.Len(t, sub.Events, 1)
}
