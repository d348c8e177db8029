package application

import (
	"strconv"

	"shopify-ingest/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
)

// The Map functions project Shopify payloads onto canonical records.
// They are pure: no I/O, no clock, and the same input always yields the same record.

func MapCustomer(tenantID string, c *goshopify.Customer) (*domain.Customer, error) {
	if c == nil || c.Id == 0 {
		return nil, domain.ErrMissingExternalID
	}
	return &domain.Customer{
		TenantID:  tenantID,
		ShopifyID: externalID(c.Id),
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
	}, nil
}

// MapOrder keeps the embedded customer's id as a loose reference; the customer
// record may not exist yet and is never required to.
func MapOrder(tenantID string, o *goshopify.Order) (*domain.Order, error) {
	if o == nil || o.Id == 0 {
		return nil, domain.ErrMissingExternalID
	}
	order := &domain.Order{
		TenantID:    tenantID,
		ShopifyID:   externalID(o.Id),
		Currency:    o.Currency,
		OrderNumber: o.OrderNumber,
	}
	if o.TotalPrice != nil {
		order.TotalPrice = formatDecimal(*o.TotalPrice)
	}
	if o.Customer != nil && o.Customer.Id != 0 {
		id := externalID(o.Customer.Id)
		order.CustomerID = &id
	}
	return order, nil
}

func MapProduct(tenantID string, p *goshopify.Product) (*domain.Product, error) {
	if p == nil || p.Id == 0 {
		return nil, domain.ErrMissingExternalID
	}
	return &domain.Product{
		TenantID:  tenantID,
		ShopifyID: externalID(p.Id),
		Title:     p.Title,
		Vendor:    p.Vendor,
	}, nil
}

func MapCheckout(tenantID string, c *domain.CheckoutPayload) (*domain.Checkout, error) {
	if c == nil || c.ID == 0 {
		return nil, domain.ErrMissingExternalID
	}
	return &domain.Checkout{
		TenantID:             tenantID,
		ShopifyID:            externalID(c.ID),
		Token:                c.Token,
		TotalPrice:           formatPrice(c.TotalPrice),
		Currency:             c.Currency,
		AbandonedCheckoutURL: c.AbandonedCheckoutURL,
		CompletedAt:          c.CompletedAt,
		SourceUpdatedAt:      c.UpdatedAt,
	}, nil
}

func externalID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// formatPrice parses a payload amount; unparseable input is kept verbatim
func formatPrice(s string) string {
	if s == "" {
		return ""
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return formatDecimal(d)
}

// formatDecimal pads to at least two places and never drops digits the payload carried,
// so three-decimal currencies such as KWD keep their precision.
func formatDecimal(d decimal.Decimal) string {
	return d.StringFixed(max(int32(2), -d.Exponent()))
}
