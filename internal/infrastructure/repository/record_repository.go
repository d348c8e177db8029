package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/infrastructure/repository/entity"
	"shopify-ingest/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordRepository implements RecordRepository using MongoDB.
// Each record kind lives in its own collection keyed by (tenantId, shopifyId).
type MongoRecordRepository struct {
	customers *mongo.Collection
	orders    *mongo.Collection
	products  *mongo.Collection
	checkouts *mongo.Collection
}

// NewMongoRecordRepository creates a new MongoDB record repository
func NewMongoRecordRepository(db *mongo.Database) *MongoRecordRepository {
	return &MongoRecordRepository{
		customers: db.Collection("customers"),
		orders:    db.Collection("orders"),
		products:  db.Collection("products"),
		checkouts: db.Collection("checkouts"),
	}
}

var _ ports.RecordRepository = (*MongoRecordRepository)(nil)

// EnsureIndexes creates the unique (tenantId, shopifyId) index on every record collection
func (r *MongoRecordRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "shopifyId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	for _, coll := range []*mongo.Collection{r.customers, r.orders, r.products, r.checkouts} {
		if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

func (r *MongoRecordRepository) UpsertCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	var doc entity.MongoCustomerDoc
	if err := upsert(ctx, r.customers, customer.TenantID, customer.ShopifyID, entity.CustomerFields(customer), &doc); err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *MongoRecordRepository) UpsertOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var doc entity.MongoOrderDoc
	if err := upsert(ctx, r.orders, order.TenantID, order.ShopifyID, entity.OrderFields(order), &doc); err != nil {
		return nil, fmt.Errorf("failed to upsert order: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *MongoRecordRepository) UpsertProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	var doc entity.MongoProductDoc
	if err := upsert(ctx, r.products, product.TenantID, product.ShopifyID, entity.ProductFields(product), &doc); err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *MongoRecordRepository) UpsertCheckout(ctx context.Context, checkout *domain.Checkout) (*domain.Checkout, error) {
	var doc entity.MongoCheckoutDoc
	if err := upsert(ctx, r.checkouts, checkout.TenantID, checkout.ShopifyID, entity.CheckoutFields(checkout), &doc); err != nil {
		return nil, fmt.Errorf("failed to upsert checkout: %w", err)
	}
	return doc.ToDomain(), nil
}

// upsert merges fields into the (tenantID, shopifyID) document, creating it on
// first sight, and decodes the resulting document into out
func upsert(ctx context.Context, coll *mongo.Collection, tenantID, shopifyID string, fields bson.M, out interface{}) error {
	if tenantID == "" || shopifyID == "" {
		return domain.ErrMissingExternalID
	}
	now := time.Now().UTC()
	fields["updatedAt"] = now

	filter := bson.M{"tenantId": tenantID, "shopifyId": shopifyID}
	update := bson.M{
		"$set": fields,
		"$setOnInsert": bson.M{
			"tenantId":  tenantID,
			"shopifyId": shopifyID,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	return coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
}
