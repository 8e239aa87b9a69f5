// File: database/repository/catalog/catalog.go
package catalogRepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mariiahub/database"
	"mariiahub/models"
)

var ErrNotFound = errors.New("service not found")

// CatalogRepository defines the interface for service-catalogue data access.
type CatalogRepository interface {
	Upsert(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, serviceID string) (*models.Service, error)
	ListActive(ctx context.Context, category string) ([]models.Service, error)
}

type mongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo constructs a new MongoDB CatalogRepository.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.MongoClient.Database("mariiahub")
	return &mongoCatalogRepo{
		coll: db.Collection("services"),
	}
}

func (r *mongoCatalogRepo) Upsert(ctx context.Context, service *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	service.UpdatedAt = time.Now().UTC()
	filter := bson.M{"id": service.ID}
	update := bson.M{"$set": service}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoCatalogRepo) GetByID(ctx context.Context, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var service models.Service
	err := r.coll.FindOne(ctx, bson.M{"id": serviceID}).Decode(&service)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *mongoCatalogRepo) ListActive(ctx context.Context, category string) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"active": true}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}
