package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopify-ingest/internal/domain"
	"shopify-ingest/internal/infrastructure/repository/entity"
	"shopify-ingest/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTenantRepository implements TenantRepository using MongoDB
type MongoTenantRepository struct {
	collection *mongo.Collection
}

// NewMongoTenantRepository creates a new MongoDB tenant repository
func NewMongoTenantRepository(db *mongo.Database) *MongoTenantRepository {
	return &MongoTenantRepository{
		collection: db.Collection("tenants"),
	}
}

var _ ports.TenantRepository = (*MongoTenantRepository)(nil)

// EnsureIndexes creates the unique index on shopDomain
func (r *MongoTenantRepository) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shopDomain", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return fmt.Errorf("failed to create tenant index: %w", err)
	}
	return nil
}

// Save creates or updates a tenant by shop domain
func (r *MongoTenantRepository) Save(ctx context.Context, tenant *domain.Tenant) error {
	now := time.Now().UTC()
	filter := bson.M{"shopDomain": tenant.ShopDomain}
	update := bson.M{
		"$set": bson.M{
			"accessToken":   tenant.AccessToken,
			"webhookSecret": tenant.WebhookSecret,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"shopDomain": tenant.ShopDomain,
			"createdAt":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc entity.MongoTenantDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}

	tenant.ID = doc.ID.Hex()
	tenant.CreatedAt = doc.CreatedAt
	tenant.UpdatedAt = doc.UpdatedAt
	return nil
}

// FindByDomain retrieves a tenant by shop domain
func (r *MongoTenantRepository) FindByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"shopDomain": shopDomain})
}

// FindByID retrieves a tenant by id; malformed ids match nothing
func (r *MongoTenantRepository) FindByID(ctx context.Context, id string) (*domain.Tenant, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoTenantRepository) findOne(ctx context.Context, filter bson.M) (*domain.Tenant, error) {
	var doc entity.MongoTenantDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return doc.ToDomain(), nil
}

// List retrieves all tenants ordered by shop domain
func (r *MongoTenantRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "shopDomain", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer cursor.Close(ctx)

	tenants := []*domain.Tenant{}
	for cursor.Next(ctx) {
		var doc entity.MongoTenantDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode tenant: %w", err)
		}
		tenants = append(tenants, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return tenants, nil
}

// Delete deletes a tenant by id
func (r *MongoTenantRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrTenantNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
