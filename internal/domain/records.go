package domain

import "time"

// Customer is the canonical projection of a Shopify customer
type Customer struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ShopifyID string    `json:"shopify_id"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order is the canonical projection of a Shopify order.
// CustomerID holds the customer's Shopify id and may reference a customer
// that has not been ingested yet.
type Order struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	ShopifyID   string    `json:"shopify_id"`
	TotalPrice  string    `json:"total_price,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	OrderNumber int       `json:"order_number,omitempty"`
	CustomerID  *string   `json:"customer_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is the canonical projection of a Shopify product
type Product struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ShopifyID string    `json:"shopify_id"`
	Title     string    `json:"title,omitempty"`
	Vendor    string    `json:"vendor,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Checkout is the canonical projection of a Shopify checkout
type Checkout struct {
	ID                   string     `json:"id"`
	TenantID             string     `json:"tenant_id"`
	ShopifyID            string     `json:"shopify_id"`
	Token                string     `json:"token,omitempty"`
	TotalPrice           string     `json:"total_price,omitempty"`
	Currency             string     `json:"currency,omitempty"`
	AbandonedCheckoutURL string     `json:"abandoned_checkout_url,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	SourceUpdatedAt      *time.Time `json:"source_updated_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// CheckoutPayload is the checkouts/create and checkouts/update webhook body.
// Only the fields the pipeline maps are declared.
type CheckoutPayload struct {
	ID                   uint64     `json:"id"`
	Token                string     `json:"token,omitempty"`
	TotalPrice           string     `json:"total_price,omitempty"`
	Currency             string     `json:"currency,omitempty"`
	AbandonedCheckoutURL string     `json:"abandoned_checkout_url,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}
