package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teleotp/teleotp/internal/models"
)

// ServiceRepository is the persistence port for the service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*models.Service, error)
}

// NumberRepository is the persistence port for number inventory.
type NumberRepository interface {
	InsertMany(ctx context.Context, numbers []*models.PhoneNumber) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PhoneNumber, error)
	FindAvailable(ctx context.Context, serviceID primitive.ObjectID) (*models.PhoneNumber, error)
	FindByService(ctx context.Context, serviceID primitive.ObjectID) ([]*models.PhoneNumber, error)
	MarkSold(ctx context.Context, id primitive.ObjectID) error
	MarkSoldByNumber(ctx context.Context, number string) error
	DeleteUnsold(ctx context.Context, id primitive.ObjectID) error
	CountAvailable(ctx context.Context, serviceID primitive.ObjectID) (int64, error)
}

// OrderRepository is the persistence port for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	FindLatestPendingByNumber(ctx context.Context, number string) (*models.Order, error)
	Complete(ctx context.Context, id primitive.ObjectID, otp string) error
	FindByUser(ctx context.Context, userID string, limit int64) ([]*models.Order, error)
	FindRecent(ctx context.Context, limit int64) ([]*models.Order, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// EventBus is the push channel buyers subscribe to for order updates.
// Delivery is best-effort: a dropped event is recovered only by the client
// re-fetching its orders.
type EventBus interface {
	Publish(ctx context.Context, event models.OrderEvent) error
	Subscribe(ctx context.Context, userID string) (<-chan models.OrderEvent, func())
}

// Notifier alerts the operator about conditions that need manual attention.
type Notifier interface {
	NotifyOutOfStock(ctx context.Context, serviceName string)
	NotifyUnmatchedOTP(ctx context.Context, phoneNumber string)
}

// MetricsRecorder abstracts the prometheus collector so tests can pass a nop.
type MetricsRecorder interface {
	IncrementPurchaseSuccess(service string)
	IncrementPurchaseFailed(service, reason string)
	IncrementOTPDelivered(source string)
	IncrementOTPUnmatched()
	IncrementWebhookUnauthorized()
	RecordDeliveryLatency(seconds float64)
}
