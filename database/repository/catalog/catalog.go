package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"beautybot/database"
	"beautybot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogRepository provides read access to the service and specialist
// reference data. The booking core never mutates either collection.
type CatalogRepository interface {
	// GetServices retrieves all services, optionally filtered by category.
	GetServices(category string) ([]models.Service, error)
	// GetServiceByID retrieves a single service; nil if it no longer exists.
	GetServiceByID(id string) (*models.Service, error)
	// GetSpecialists retrieves all specialists.
	GetSpecialists() ([]models.Specialist, error)
	// GetSpecialistByID retrieves a single specialist; nil if it no longer exists.
	GetSpecialistByID(id string) (*models.Specialist, error)
}

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	services    *mongo.Collection
	specialists *mongo.Collection
}

// NewMongoCatalogRepo creates a new instance of CatalogRepository using MongoDB.
func NewMongoCatalogRepo() CatalogRepository {
	repo := &MongoCatalogRepo{
		services:    database.Collection("services"),
		specialists: database.Collection("specialists"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	idIndex := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.services.Indexes().CreateMany(ctx, idIndex); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	if _, err := r.specialists.Indexes().CreateMany(ctx, idIndex); err != nil {
		return fmt.Errorf("failed to create specialist indexes: %w", err)
	}
	return nil
}

func (r *MongoCatalogRepo) GetServices(category string) ([]models.Service, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cursor, err := r.services.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *MongoCatalogRepo) GetServiceByID(id string) (*models.Service, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var service models.Service
	err := r.services.FindOne(ctx, bson.M{"id": id}).Decode(&service)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch service: %w", err)
	}
	return &service, nil
}

func (r *MongoCatalogRepo) GetSpecialists() ([]models.Specialist, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.specialists.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch specialists: %w", err)
	}
	defer cursor.Close(ctx)

	var specialists []models.Specialist
	if err := cursor.All(ctx, &specialists); err != nil {
		return nil, fmt.Errorf("failed to decode specialists: %w", err)
	}
	return specialists, nil
}

func (r *MongoCatalogRepo) GetSpecialistByID(id string) (*models.Specialist, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var specialist models.Specialist
	err := r.specialists.FindOne(ctx, bson.M{"id": id}).Decode(&specialist)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch specialist: %w", err)
	}
	return &specialist, nil
}
