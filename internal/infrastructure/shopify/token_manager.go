package shopify

import (
	"fmt"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/ports"

	"github.com/rs/zerolog"
)

// TokenManager seals tenant credentials before storage and opens them after retrieval
type TokenManager struct {
	encryptionSvc ports.EncryptionService
	logger        zerolog.Logger
}

// NewTokenManager creates a new token manager
func NewTokenManager(encryptionSvc ports.EncryptionService, logger zerolog.Logger) *TokenManager {
	return &TokenManager{
		encryptionSvc: encryptionSvc,
		logger:        logger,
	}
}

// EncryptToken encrypts an access token before storage
func (tm *TokenManager) EncryptToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	return tm.encryptionSvc.Encrypt(token)
}

// DecryptToken decrypts an access token after retrieval
func (tm *TokenManager) DecryptToken(encryptedToken string) (string, error) {
	if encryptedToken == "" {
		return "", fmt.Errorf("encrypted token cannot be empty")
	}
	return tm.encryptionSvc.Decrypt(encryptedToken)
}

// Seal returns a copy of tenant with its access token and webhook secret encrypted
func (tm *TokenManager) Seal(tenant *domain.Tenant) (*domain.Tenant, error) {
	sealed := *tenant
	token, err := tm.EncryptToken(tenant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	sealed.AccessToken = token
	if tenant.WebhookSecret != "" {
		secret, err := tm.encryptionSvc.Encrypt(tenant.WebhookSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt webhook secret: %w", err)
		}
		sealed.WebhookSecret = secret
	}
	return &sealed, nil
}

// Open returns a copy of a stored tenant with its credentials decrypted
func (tm *TokenManager) Open(tenant *domain.Tenant) (*domain.Tenant, error) {
	opened := *tenant
	token, err := tm.DecryptToken(tenant.AccessToken)
	if err != nil {
		tm.logger.Error().
			Err(err).
			Str("shop", tenant.ShopDomain).
			Msg("Failed to decrypt access token")
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	opened.AccessToken = token
	if tenant.WebhookSecret != "" {
		secret, err := tm.encryptionSvc.Decrypt(tenant.WebhookSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt webhook secret: %w", err)
		}
		opened.WebhookSecret = secret
	}
	return &opened, nil
}
