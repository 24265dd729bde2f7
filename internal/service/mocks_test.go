package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teleotp/teleotp/internal/models"
)

// MockServiceRepository is a mock implementation of ServiceRepository
type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) Create(ctx context.Context, service *models.Service) error {
	args := m.Called(ctx, service)
	if args.Error(0) == nil && service.ID.IsZero() {
		service.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *MockServiceRepository) FindAll(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}

// MockNumberRepository is a mock implementation of NumberRepository
type MockNumberRepository struct {
	mock.Mock
}

func (m *MockNumberRepository) InsertMany(ctx context.Context, numbers []*models.PhoneNumber) error {
	args := m.Called(ctx, numbers)
	return args.Error(0)
}

func (m *MockNumberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PhoneNumber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhoneNumber), args.Error(1)
}

func (m *MockNumberRepository) FindAvailable(ctx context.Context, serviceID primitive.ObjectID) (*models.PhoneNumber, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PhoneNumber), args.Error(1)
}

func (m *MockNumberRepository) FindByService(ctx context.Context, serviceID primitive.ObjectID) ([]*models.PhoneNumber, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PhoneNumber), args.Error(1)
}

func (m *MockNumberRepository) MarkSold(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNumberRepository) MarkSoldByNumber(ctx context.Context, number string) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *MockNumberRepository) DeleteUnsold(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNumberRepository) CountAvailable(ctx context.Context, serviceID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil && order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) FindLatestPendingByNumber(ctx context.Context, number string) (*models.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Complete(ctx context.Context, id primitive.ObjectID, otp string) error {
	args := m.Called(ctx, id, otp)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID string, limit int64) ([]*models.Order, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) FindRecent(ctx context.Context, limit int64) ([]*models.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockEventBus records published events.
type MockEventBus struct {
	mock.Mock
	Published []models.OrderEvent
}

func (m *MockEventBus) Publish(ctx context.Context, event models.OrderEvent) error {
	m.Published = append(m.Published, event)
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, userID string) (<-chan models.OrderEvent, func()) {
	args := m.Called(ctx, userID)
	return args.Get(0).(<-chan models.OrderEvent), args.Get(1).(func())
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyOutOfStock(ctx context.Context, serviceName string) {
	m.Called(ctx, serviceName)
}

func (m *MockNotifier) NotifyUnmatchedOTP(ctx context.Context, phoneNumber string) {
	m.Called(ctx, phoneNumber)
}

// MockListingCache is a mock implementation of ListingCache
type MockListingCache struct {
	mock.Mock
}

func (m *MockListingCache) GetListings(ctx context.Context) ([]models.ServiceListing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ServiceListing), args.Error(1)
}

func (m *MockListingCache) SetListings(ctx context.Context, listings []models.ServiceListing, ttl time.Duration) error {
	args := m.Called(ctx, listings, ttl)
	return args.Error(0)
}

func (m *MockListingCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// nopMetrics keeps tests away from the global prometheus registry.
type nopMetrics struct{}

func (nopMetrics) IncrementPurchaseSuccess(string)        {}
func (nopMetrics) IncrementPurchaseFailed(string, string) {}
func (nopMetrics) IncrementOTPDelivered(string)           {}
func (nopMetrics) IncrementOTPUnmatched()                 {}
func (nopMetrics) IncrementWebhookUnauthorized()          {}
func (nopMetrics) RecordDeliveryLatency(float64)          {}
