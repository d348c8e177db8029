package domain

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches a shop domain or id
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrNoWebhookSecret means neither a tenant secret nor the default secret is configured
	ErrNoWebhookSecret = errors.New("no webhook secret configured")

	// ErrInvalidSignature is returned when the webhook HMAC does not match
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrInvalidSubject is returned for bus subjects that match neither message family
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrUnsupportedResource is returned for resources a sync job cannot page through
	ErrUnsupportedResource = errors.New("unsupported resource")

	// ErrInvalidShopDomain is returned for shop domains that cannot form a subject
	ErrInvalidShopDomain = errors.New("invalid shop domain")

	// ErrInvalidTopic is returned for webhook topics not in resource/action form
	ErrInvalidTopic = errors.New("invalid webhook topic")

	// ErrInvalidPayload is returned for webhook bodies and job bodies that are not valid JSON
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrMissingExternalID is returned when a payload carries no Shopify id
	ErrMissingExternalID = errors.New("payload has no id")
)
