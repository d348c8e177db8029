package entity

import (
	"time"

	"shopify-ingest/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Every record collection shares the identity fields below and a unique
// (tenantId, shopifyId) index. Mapped fields go to $set, identity to $setOnInsert.

type MongoCustomerDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TenantID  string             `bson:"tenantId"`
	ShopifyID string             `bson:"shopifyId"`
	Email     string             `bson:"email"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *MongoCustomerDoc) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:        d.ID.Hex(),
		TenantID:  d.TenantID,
		ShopifyID: d.ShopifyID,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// CustomerFields returns the mutable fields of a customer
func CustomerFields(c *domain.Customer) bson.M {
	return bson.M{
		"email":     c.Email,
		"firstName": c.FirstName,
		"lastName":  c.LastName,
	}
}

type MongoOrderDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	TenantID    string             `bson:"tenantId"`
	ShopifyID   string             `bson:"shopifyId"`
	TotalPrice  string             `bson:"totalPrice"`
	Currency    string             `bson:"currency"`
	OrderNumber int                `bson:"orderNumber"`
	CustomerID  *string            `bson:"customerId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *MongoOrderDoc) ToDomain() *domain.Order {
	return &domain.Order{
		ID:          d.ID.Hex(),
		TenantID:    d.TenantID,
		ShopifyID:   d.ShopifyID,
		TotalPrice:  d.TotalPrice,
		Currency:    d.Currency,
		OrderNumber: d.OrderNumber,
		CustomerID:  d.CustomerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func OrderFields(o *domain.Order) bson.M {
	return bson.M{
		"totalPrice":  o.TotalPrice,
		"currency":    o.Currency,
		"orderNumber": o.OrderNumber,
		"customerId":  o.CustomerID,
	}
}

type MongoProductDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	TenantID  string             `bson:"tenantId"`
	ShopifyID string             `bson:"shopifyId"`
	Title     string             `bson:"title"`
	Vendor    string             `bson:"vendor"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *MongoProductDoc) ToDomain() *domain.Product {
	return &domain.Product{
		ID:        d.ID.Hex(),
		TenantID:  d.TenantID,
		ShopifyID: d.ShopifyID,
		Title:     d.Title,
		Vendor:    d.Vendor,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func ProductFields(p *domain.Product) bson.M {
	return bson.M{
		"title":  p.Title,
		"vendor": p.Vendor,
	}
}

type MongoCheckoutDoc struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	TenantID             string             `bson:"tenantId"`
	ShopifyID            string             `bson:"shopifyId"`
	Token                string             `bson:"token"`
	TotalPrice           string             `bson:"totalPrice"`
	Currency             string             `bson:"currency"`
	AbandonedCheckoutURL string             `bson:"abandonedCheckoutUrl"`
	CompletedAt          *time.Time         `bson:"completedAt"`
	SourceUpdatedAt      *time.Time         `bson:"sourceUpdatedAt"`
	CreatedAt            time.Time          `bson:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt"`
}

func (d *MongoCheckoutDoc) ToDomain() *domain.Checkout {
	return &domain.Checkout{
		ID:                   d.ID.Hex(),
		TenantID:             d.TenantID,
		ShopifyID:            d.ShopifyID,
		Token:                d.Token,
		TotalPrice:           d.TotalPrice,
		Currency:             d.Currency,
		AbandonedCheckoutURL: d.AbandonedCheckoutURL,
		CompletedAt:          d.CompletedAt,
		SourceUpdatedAt:      d.SourceUpdatedAt,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func CheckoutFields(c *domain.Checkout) bson.M {
	return bson.M{
		"token":                c.Token,
		"totalPrice":           c.TotalPrice,
		"currency":             c.Currency,
		"abandonedCheckoutUrl": c.AbandonedCheckoutURL,
		"completedAt":          c.CompletedAt,
		"sourceUpdatedAt":      c.SourceUpdatedAt,
	}
}
