package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/rs/zerolog"
)

// WebhookHandler processes the payload of the webhook topics it claims
type WebhookHandler interface {
	CanHandle(topic string) bool
	// Handle upserts the records carried by the event and returns how many were written
	Handle(ctx context.Context, tenant *domain.Tenant, event *domain.WebhookEvent) (int, error)
}

// Dispatcher decides what happens to every message pulled from the ingestion stream.
// It performs the work (upserts, API calls, continuation publishes) and returns the
// settlement; the consumer applies it.
type Dispatcher struct {
	tenants   *TenantService
	clients   ports.ShopifyClientPool
	ingestion *IngestionService
	publisher ports.Publisher
	handlers  []WebhookHandler
	events    []ports.EventPublisher
	pageSize  int
	logger    zerolog.Logger
}

var _ ports.MessageHandler = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher fetching pageSize items per sync job
func NewDispatcher(
	tenants *TenantService,
	clients ports.ShopifyClientPool,
	ingestion *IngestionService,
	publisher ports.Publisher,
	pageSize int,
	logger zerolog.Logger,
) *Dispatcher {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Dispatcher{
		tenants:   tenants,
		clients:   clients,
		ingestion: ingestion,
		publisher: publisher,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// RegisterHandler adds a webhook handler; the first handler claiming a topic wins
func (d *Dispatcher) RegisterHandler(h WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

// AddEventPublisher adds a sink notified after every settled message
func (d *Dispatcher) AddEventPublisher(p ports.EventPublisher) {
	d.events = append(d.events, p)
}

// Dispatch processes one message and returns how it must be settled
func (d *Dispatcher) Dispatch(ctx context.Context, msg ports.Message) ports.Outcome {
	start := time.Now()
	event := &domain.IngestionEvent{Subject: msg.Subject(), At: start.UTC()}

	outcome := d.dispatch(ctx, msg, event)

	event.Outcome = outcome.Action.String()
	if outcome.Action == ports.Terminate {
		event.Error = outcome.Reason
	}
	event.DurationMs = time.Since(start).Milliseconds()
	d.log(event, outcome)
	for _, p := range d.events {
		p.Publish(event)
	}
	return outcome
}

func (d *Dispatcher) dispatch(ctx context.Context, msg ports.Message, event *domain.IngestionEvent) ports.Outcome {
	route, err := domain.ParseSubject(msg.Subject())
	if err != nil {
		return terminate(err)
	}
	event.Kind = route.Kind.String()
	event.Resource = route.Resource.String()

	if route.Kind == domain.KindWebhook {
		return d.dispatchWebhook(ctx, route, msg.Data(), event)
	}
	return d.dispatchSync(ctx, route, msg.Subject(), msg.Data(), event)
}

func (d *Dispatcher) dispatchWebhook(ctx context.Context, route domain.Route, data []byte, event *domain.IngestionEvent) ports.Outcome {
	event.ShopDomain = route.ShopDomain
	event.Topic = route.Topic()

	tenant, err := d.tenants.FindByDomain(ctx, route.ShopDomain)
	if err != nil {
		return terminate(err)
	}
	event.TenantID = tenant.ID

	var webhook domain.WebhookEvent
	if err := json.Unmarshal(data, &webhook); err != nil {
		return terminate(fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
	}
	webhook.ShopDomain = route.ShopDomain
	if webhook.Topic == "" {
		webhook.Topic = route.Topic()
	}
	event.Topic = webhook.Topic

	handler := d.handlerFor(webhook.Topic)
	if handler == nil {
		d.logger.Info().
			Str("shop", route.ShopDomain).
			Str("topic", webhook.Topic).
			Msg("No handler for webhook topic, ignoring")
		return ports.Outcome{Action: ports.Ack}
	}

	written, err := handler.Handle(ctx, tenant, &webhook)
	event.Records = written
	if err != nil {
		return terminate(err)
	}
	return ports.Outcome{Action: ports.Ack}
}

// Handles reports whether a registered handler claims the topic
func (d *Dispatcher) Handles(topic string) bool {
	return d.handlerFor(topic) != nil
}

func (d *Dispatcher) handlerFor(topic string) WebhookHandler {
	for _, h := range d.handlers {
		if h.CanHandle(topic) {
			return h
		}
	}
	return nil
}

func (d *Dispatcher) dispatchSync(ctx context.Context, route domain.Route, subject string, data []byte, event *domain.IngestionEvent) ports.Outcome {
	event.TenantID = route.TenantID

	resource, err := domain.ParseSyncResource(route.Resource.String())
	if err != nil {
		return terminate(err)
	}

	job := domain.SyncJob{Status: domain.SyncStatusStart}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &job); err != nil {
			return terminate(fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
		}
	}
	event.Cursor = job.Cursor

	tenant, err := d.tenants.FindByID(ctx, route.TenantID)
	if err != nil {
		return terminate(err)
	}
	event.ShopDomain = tenant.ShopDomain

	client, err := d.clients.ClientFor(tenant)
	if err != nil {
		return terminate(err)
	}

	page := d.ingestPage(ctx, client, tenant.ID, resource, job.Cursor)
	event.Records = page.written

	switch page.status {
	case ports.FetchRateLimited:
		return ports.Outcome{Action: ports.NakWithDelay, Delay: page.retryAfter, Reason: "rate limited"}
	case ports.FetchFailed:
		return terminate(page.err)
	}
	if page.err != nil {
		return terminate(page.err)
	}

	if page.next == "" {
		d.logger.Info().
			Str("tenantId", tenant.ID).
			Str("resource", resource.String()).
			Msg("Sync complete")
		return ports.Outcome{Action: ports.Ack}
	}

	body, err := json.Marshal(domain.SyncJob{Status: domain.SyncStatusProcessing, Cursor: page.next})
	if err != nil {
		return terminate(fmt.Errorf("failed to encode continuation: %w", err))
	}
	if err := d.publisher.Publish(ctx, subject, body, ""); err != nil {
		return terminate(fmt.Errorf("failed to publish continuation: %w", err))
	}
	return ports.Outcome{Action: ports.Ack}
}

// pageResult is the outcome of fetching one page and upserting its items
type pageResult struct {
	status     ports.FetchStatus
	written    int
	next       string
	retryAfter time.Duration
	err        error
}

func (d *Dispatcher) ingestPage(ctx context.Context, client ports.ShopifyClient, tenantID string, resource domain.Resource, cursor string) pageResult {
	switch resource {
	case domain.ResourceCustomers:
		return upsertPage(ctx, client.FetchCustomers(ctx, d.pageSize, cursor), tenantID, discard(d.ingestion.UpsertCustomer))
	case domain.ResourceOrders:
		return upsertPage(ctx, client.FetchOrders(ctx, d.pageSize, cursor), tenantID, discard(d.ingestion.UpsertOrder))
	case domain.ResourceProducts:
		return upsertPage(ctx, client.FetchProducts(ctx, d.pageSize, cursor), tenantID, discard(d.ingestion.UpsertProduct))
	default:
		return pageResult{status: ports.FetchFailed, err: fmt.Errorf("%w: %s", domain.ErrUnsupportedResource, resource)}
	}
}

// upsertPage writes every item of a successful page in order, stopping at the first failure
func upsertPage[T any](ctx context.Context, res ports.FetchResult[T], tenantID string, upsert func(context.Context, string, *T) error) pageResult {
	if res.Status != ports.FetchOK {
		return pageResult{status: res.Status, retryAfter: res.RetryAfter, err: res.Err}
	}
	out := pageResult{status: ports.FetchOK, next: res.NextCursor}
	for i := range res.Items {
		if err := upsert(ctx, tenantID, &res.Items[i]); err != nil {
			out.err = err
			return out
		}
		out.written++
	}
	return out
}

func discard[T, R any](f func(context.Context, string, *T) (R, error)) func(context.Context, string, *T) error {
	return func(ctx context.Context, tenantID string, item *T) error {
		_, err := f(ctx, tenantID, item)
		return err
	}
}

func terminate(err error) ports.Outcome {
	if err == nil {
		err = errors.New("unknown error")
	}
	return ports.Outcome{Action: ports.Terminate, Reason: err.Error()}
}

func (d *Dispatcher) log(event *domain.IngestionEvent, outcome ports.Outcome) {
	var e *zerolog.Event
	switch outcome.Action {
	case ports.Ack:
		e = d.logger.Info()
	case ports.NakWithDelay:
		e = d.logger.Warn().Dur("delay", outcome.Delay)
	default:
		e = d.logger.Error().Str("reason", outcome.Reason)
	}
	e.Str("subject", event.Subject).
		Str("tenantId", event.TenantID).
		Str("shop", event.ShopDomain).
		Int("records", event.Records).
		Int64("durationMs", event.DurationMs).
		Str("outcome", event.Outcome).
		Msg("Message processed")
}
