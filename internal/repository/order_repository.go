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

type OrderRepository struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewOrderRepository(db *mongo.Database, logger *logrus.Logger) *OrderRepository {
	return &OrderRepository{
		collection: db.Collection("orders"),
		logger:     logger,
	}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	order.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *OrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return &order, nil
}

// FindLatestPendingByNumber returns the most recently created pending order
// for the number, or nil when none exists. When several pending orders share
// a number the newest one wins the OTP.
func (r *OrderRepository) FindLatestPendingByNumber(ctx context.Context, number string) (*models.Order, error) {
	filter := bson.M{
		"phone_number": number,
		"status":       models.OrderStatusPending,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var order models.Order
	err := r.collection.FindOne(ctx, filter, opts).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending order: %w", err)
	}

	return &order, nil
}

// Complete stamps the OTP onto the order and moves it to completed.
func (r *OrderRepository) Complete(ctx context.Context, id primitive.ObjectID, otp string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"otp":          otp,
			"status":       models.OrderStatusCompleted,
			"completed_at": &now,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to complete order: %w", err)
	}

	return nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string, limit int64) ([]*models.Order, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	return r.find(ctx, filter, opts)
}

func (r *OrderRepository) FindRecent(ctx context.Context, limit int64) ([]*models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	return r.find(ctx, bson.M{}, opts)
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*models.Order
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, &order)
	}

	return orders, nil
}

func (r *OrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "phone_number", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
