package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/teleotp/teleotp/internal/models"
)

type NumberRepository struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewNumberRepository(db *mongo.Database, logger *logrus.Logger) *NumberRepository {
	return &NumberRepository{
		collection: db.Collection("phone_numbers"),
		logger:     logger,
	}
}

func (r *NumberRepository) InsertMany(ctx context.Context, numbers []*models.PhoneNumber) error {
	if len(numbers) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(numbers))
	for _, n := range numbers {
		n.CreatedAt = now
		docs = append(docs, n)
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to insert phone numbers: %w", err)
	}

	for i, id := range result.InsertedIDs {
		numbers[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

func (r *NumberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PhoneNumber, error) {
	var number models.PhoneNumber
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&number)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find phone number: %w", err)
	}

	return &number, nil
}

// FindAvailable returns any one unsold number under the service, or nil when
// the service is out of stock. No ordering is guaranteed, and the number is
// not reserved: concurrent callers may receive the same row.
func (r *NumberRepository) FindAvailable(ctx context.Context, serviceID primitive.ObjectID) (*models.PhoneNumber, error) {
	filter := bson.M{
		"service_id": serviceID,
		"is_sold":    false,
	}

	var number models.PhoneNumber
	err := r.collection.FindOne(ctx, filter).Decode(&number)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find available number: %w", err)
	}

	return &number, nil
}

func (r *NumberRepository) FindByService(ctx context.Context, serviceID primitive.ObjectID) ([]*models.PhoneNumber, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"service_id": serviceID})
	if err != nil {
		return nil, fmt.Errorf("failed to find phone numbers: %w", err)
	}
	defer cursor.Close(ctx)

	var numbers []*models.PhoneNumber
	for cursor.Next(ctx) {
		var number models.PhoneNumber
		if err := cursor.Decode(&number); err != nil {
			return nil, fmt.Errorf("failed to decode phone number: %w", err)
		}
		numbers = append(numbers, &number)
	}

	return numbers, nil
}

func (r *NumberRepository) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"is_sold": true}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark number sold: %w", err)
	}

	return nil
}

// MarkSoldByNumber marks every row carrying this number string as sold. The
// operator override path only knows the denormalized number from the order.
func (r *NumberRepository) MarkSoldByNumber(ctx context.Context, number string) error {
	update := bson.M{"$set": bson.M{"is_sold": true}}

	_, err := r.collection.UpdateMany(ctx, bson.M{"phone_number": number}, update)
	if err != nil {
		return fmt.Errorf("failed to mark number sold: %w", err)
	}

	return nil
}

// DeleteUnsold removes a number only while it is unsold.
func (r *NumberRepository) DeleteUnsold(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "is_sold": false})
	if err != nil {
		return fmt.Errorf("failed to delete phone number: %w", err)
	}

	if result.DeletedCount == 0 {
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return models.ErrNumberNotFound
		}
		return models.ErrNumberSold
	}

	return nil
}

func (r *NumberRepository) CountAvailable(ctx context.Context, serviceID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"service_id": serviceID,
		"is_sold":    false,
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count available numbers: %w", err)
	}

	return count, nil
}

func (r *NumberRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "service_id", Value: 1}, {Key: "is_sold", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "phone_number", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
