package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignWebhook returns the base64 HMAC-SHA256 of body under secret,
// the value Shopify sends in X-Shopify-Hmac-Sha256.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook reports whether signature authenticates rawBody under secret.
// The body must be the exact bytes received; an empty secret or signature never verifies.
func VerifyWebhook(rawBody []byte, signature string, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := SignWebhook(rawBody, secret)
	if len(expected) != len(signature) {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookVerifier implements ports.WebhookVerifier with Shopify's HMAC scheme
type WebhookVerifier struct{}

func NewWebhookVerifier() WebhookVerifier {
	return WebhookVerifier{}
}

func (WebhookVerifier) Verify(rawBody []byte, signature string, secret string) bool {
	return VerifyWebhook(rawBody, signature, secret)
}
