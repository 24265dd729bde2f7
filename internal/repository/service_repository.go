package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teleotp/teleotp/internal/models"
)

type ServiceRepository struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewServiceRepository(db *mongo.Database, logger *logrus.Logger) *ServiceRepository {
	return &ServiceRepository{
		collection: db.Collection("services"),
		logger:     logger,
	}
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	service.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}

	service.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var service models.Service
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&service)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}

func (r *ServiceRepository) FindAll(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*models.Service
	for cursor.Next(ctx) {
		var service models.Service
		if err := cursor.Decode(&service); err != nil {
			return nil, fmt.Errorf("failed to decode service: %w", err)
		}
		services = append(services, &service)
	}

	return services, nil
}
