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

// WebhookRequest is an incoming webhook as received on the wire
type WebhookRequest struct {
	Topic      string
	ShopDomain string
	Signature  string
	WebhookID  string
	Body       []byte
}

// WebhookIntakeService authenticates webhooks and hands them to the bus
type WebhookIntakeService struct {
	tenants       *TenantService
	publisher     ports.Publisher
	verifier      ports.WebhookVerifier
	defaultSecret string
	logger        zerolog.Logger
}

// NewWebhookIntakeService creates a new intake service.
// defaultSecret is used for tenants without their own webhook secret.
func NewWebhookIntakeService(
	tenants *TenantService,
	publisher ports.Publisher,
	verifier ports.WebhookVerifier,
	defaultSecret string,
	logger zerolog.Logger,
) *WebhookIntakeService {
	return &WebhookIntakeService{
		tenants:       tenants,
		publisher:     publisher,
		verifier:      verifier,
		defaultSecret: defaultSecret,
		logger:        logger,
	}
}

// Accept verifies the request and publishes it to webhook.{shop}.{resource}.{action}.
// It returns once the bus has stored the message; processing happens later.
func (s *WebhookIntakeService) Accept(ctx context.Context, req WebhookRequest) error {
	shopDomain := domain.NormalizeShopDomain(req.ShopDomain)
	if err := domain.ValidateShopDomain(shopDomain); err != nil {
		return err
	}
	if err := domain.ValidateTopic(req.Topic); err != nil {
		return err
	}
	if req.Signature == "" {
		return domain.ErrInvalidSignature
	}

	secret, err := s.resolveSecret(ctx, shopDomain)
	if err != nil {
		return err
	}
	if !s.verifier.Verify(req.Body, req.Signature, secret) {
		s.logger.Warn().
			Str("shop", shopDomain).
			Str("topic", req.Topic).
			Msg("Webhook signature mismatch")
		return domain.ErrInvalidSignature
	}

	if !json.Valid(req.Body) {
		return fmt.Errorf("%w: webhook body is not JSON", domain.ErrInvalidPayload)
	}
	envelope, err := json.Marshal(domain.WebhookEvent{
		ShopDomain: shopDomain,
		Topic:      req.Topic,
		WebhookID:  req.WebhookID,
		Data:       json.RawMessage(req.Body),
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook envelope: %w", err)
	}

	subject := domain.WebhookSubject(shopDomain, req.Topic)
	if err := s.publisher.Publish(ctx, subject, envelope, req.WebhookID); err != nil {
		return err
	}

	s.logger.Info().
		Str("shop", shopDomain).
		Str("topic", req.Topic).
		Str("subject", subject).
		Msg("Webhook accepted")
	return nil
}

// resolveSecret prefers the tenant's own secret, then the default secret
func (s *WebhookIntakeService) resolveSecret(ctx context.Context, shopDomain string) (string, error) {
	tenant, err := s.tenants.FindByDomain(ctx, shopDomain)
	switch {
	case err == nil && tenant.WebhookSecret != "":
		return tenant.WebhookSecret, nil
	case err != nil && !errors.Is(err, domain.ErrTenantNotFound):
		s.logger.Warn().Err(err).Str("shop", shopDomain).Msg("Tenant lookup failed, using default webhook secret")
	}
	if s.defaultSecret == "" {
		return "", domain.ErrNoWebhookSecret
	}
	return s.defaultSecret, nil
}
