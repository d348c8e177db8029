package entity

import (
	"time"

	"shopify-ingest/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoTenantDoc represents a tenant in MongoDB. Credentials are stored sealed.
type MongoTenantDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ShopDomain    string             `bson:"shopDomain"`
	AccessToken   string             `bson:"accessToken"`
	WebhookSecret string             `bson:"webhookSecret,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoTenantDoc) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:            d.ID.Hex(),
		ShopDomain:    d.ShopDomain,
		AccessToken:   d.AccessToken,
		WebhookSecret: d.WebhookSecret,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
