package domain

import (
	"fmt"
	"strings"
	"time"
)

// Tenant represents one onboarded Shopify store
type Tenant struct {
	ID            string    `json:"id"`
	ShopDomain    string    `json:"shop_domain"`
	AccessToken   string    `json:"-"`
	WebhookSecret string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewTenant creates a tenant after validating the shop domain and credential
func NewTenant(shopDomain, accessToken, webhookSecret string) (*Tenant, error) {
	shopDomain = NormalizeShopDomain(shopDomain)
	if err := ValidateShopDomain(shopDomain); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrInvalidPayload)
	}

	now := time.Now()
	return &Tenant{
		ShopDomain:    shopDomain,
		AccessToken:   accessToken,
		WebhookSecret: webhookSecret,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NormalizeShopDomain lower-cases the domain and strips scheme and trailing slashes
func NormalizeShopDomain(shopDomain string) string {
	d := strings.TrimSpace(strings.ToLower(shopDomain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimRight(d, "/")
}

// ValidateShopDomain rejects domains that cannot be used as a bus subject segment
func ValidateShopDomain(shopDomain string) error {
	if shopDomain == "" {
		return fmt.Errorf("%w: shop domain is required", ErrInvalidShopDomain)
	}
	if strings.ContainsAny(shopDomain, " */>\t\r\n") || strings.HasPrefix(shopDomain, ".") || strings.HasSuffix(shopDomain, ".") || strings.Contains(shopDomain, "..") {
		return fmt.Errorf("%w: %s", ErrInvalidShopDomain, shopDomain)
	}
	return nil
}
