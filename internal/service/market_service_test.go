package service

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teleotp/teleotp/internal/models"
)

type MarketServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	serviceRepo *MockServiceRepository
	numberRepo  *MockNumberRepository
	orderRepo   *MockOrderRepository
	listings    *MockListingCache
	bus         *MockEventBus
	notifier    *MockNotifier
	service     *MarketService
}

func (s *MarketServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.serviceRepo = new(MockServiceRepository)
	s.numberRepo = new(MockNumberRepository)
	s.orderRepo = new(MockOrderRepository)
	s.listings = new(MockListingCache)
	s.bus = new(MockEventBus)
	s.notifier = new(MockNotifier)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.service = NewMarketService(
		s.serviceRepo, s.numberRepo, s.orderRepo,
		s.listings, s.bus, s.notifier, nopMetrics{}, logger,
	)
}

func TestMarketServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MarketServiceTestSuite))
}

func (s *MarketServiceTestSuite) activeService(name string) *models.Service {
	return &models.Service{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Price:    0.50,
		IsActive: true,
	}
}

func (s *MarketServiceTestSuite) TestPurchase_CreatesPendingOrder() {
	svc := s.activeService("Telegram India")
	number := &models.PhoneNumber{
		ID:        primitive.NewObjectID(),
		ServiceID: svc.ID,
		Number:    "+911234567890",
	}

	s.serviceRepo.On("FindByID", s.ctx, svc.ID).Return(svc, nil)
	s.numberRepo.On("FindAvailable", s.ctx, svc.ID).Return(number, nil)
	s.orderRepo.On("Create", s.ctx, mock.AnythingOfType("*models.Order")).Return(nil)
	s.bus.On("Publish", s.ctx, mock.AnythingOfType("models.OrderEvent")).Return(nil)

	order, err := s.service.Purchase(s.ctx, "user123", svc.ID.Hex())

	s.NoError(err)
	s.Require().NotNil(order)
	s.Equal(models.OrderStatusPending, order.Status)
	s.Equal("user123", order.UserID)
	s.Equal("+911234567890", order.PhoneNumber)
	s.Equal(number.ID, order.PhoneNumberID)
	s.Empty(order.OTP)
	s.NotEmpty(order.OrderID)
	s.Nil(order.CompletedAt)

	// Purchasing does not touch the number row; it stays unsold until an
	// OTP arrives.
	s.numberRepo.AssertNotCalled(s.T(), "MarkSold", mock.Anything, mock.Anything)

	s.Require().Len(s.bus.Published, 1)
	s.Equal(models.EventOrderCreated, s.bus.Published[0].Type)
}

func (s *MarketServiceTestSuite) TestPurchase_SameNumberHandedOutTwice() {
	svc := s.activeService("Telegram India")
	number := &models.PhoneNumber{
		ID:        primitive.NewObjectID(),
		ServiceID: svc.ID,
		Number:    "+911234567890",
	}

	s.serviceRepo.On("FindByID", s.ctx, svc.ID).Return(svc, nil)
	s.numberRepo.On("FindAvailable", s.ctx, svc.ID).Return(number, nil)
	s.orderRepo.On("Create", s.ctx, mock.AnythingOfType("*models.Order")).Return(nil)
	s.bus.On("Publish", s.ctx, mock.AnythingOfType("models.OrderEvent")).Return(nil)

	first, err := s.service.Purchase(s.ctx, "alice", svc.ID.Hex())
	s.NoError(err)
	second, err := s.service.Purchase(s.ctx, "bob", svc.ID.Hex())
	s.NoError(err)

	s.Equal(first.PhoneNumber, second.PhoneNumber)
	s.NotEqual(first.OrderID, second.OrderID)
}

func (s *MarketServiceTestSuite) TestPurchase_NoStock() {
	svc := s.activeService("WhatsApp US")

	s.serviceRepo.On("FindByID", s.ctx, svc.ID).Return(svc, nil)
	s.numberRepo.On("FindAvailable", s.ctx, svc.ID).Return(nil, nil)
	s.notifier.On("NotifyOutOfStock", s.ctx, "WhatsApp US").Return()

	order, err := s.service.Purchase(s.ctx, "user123", svc.ID.Hex())

	s.ErrorIs(err, models.ErrNoStock)
	s.Nil(order)
	s.orderRepo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	s.notifier.AssertExpectations(s.T())
}

func (s *MarketServiceTestSuite) TestPurchase_ServiceNotFound() {
	id := primitive.NewObjectID()
	s.serviceRepo.On("FindByID", s.ctx, id).Return(nil, nil)

	order, err := s.service.Purchase(s.ctx, "user123", id.Hex())

	s.ErrorIs(err, models.ErrServiceNotFound)
	s.Nil(order)
}

func (s *MarketServiceTestSuite) TestPurchase_MalformedServiceID() {
	order, err := s.service.Purchase(s.ctx, "user123", "not-a-hex-id")

	s.ErrorIs(err, models.ErrServiceNotFound)
	s.Nil(order)
	s.serviceRepo.AssertNotCalled(s.T(), "FindByID", mock.Anything, mock.Anything)
}

func (s *MarketServiceTestSuite) TestPurchase_InactiveService() {
	svc := s.activeService("Telegram India")
	svc.IsActive = false

	s.serviceRepo.On("FindByID", s.ctx, svc.ID).Return(svc, nil)

	order, err := s.service.Purchase(s.ctx, "user123", svc.ID.Hex())

	s.ErrorIs(err, models.ErrServiceInactive)
	s.Nil(order)
	s.numberRepo.AssertNotCalled(s.T(), "FindAvailable", mock.Anything, mock.Anything)
}

func (s *MarketServiceTestSuite) TestListServices_CacheMissCountsStock() {
	svc := s.activeService("Telegram India")

	s.listings.On("GetListings", s.ctx).Return(nil, nil)
	s.serviceRepo.On("FindAll", s.ctx, true).Return([]*models.Service{svc}, nil)
	s.numberRepo.On("CountAvailable", s.ctx, svc.ID).Return(int64(7), nil)
	s.listings.On("SetListings", s.ctx, mock.AnythingOfType("[]models.ServiceListing"), 30*time.Second).Return(nil)

	listings, err := s.service.ListServices(s.ctx)

	s.NoError(err)
	s.Require().Len(listings, 1)
	s.Equal("Telegram India", listings[0].Name)
	s.Equal(int64(7), listings[0].Stock)
	s.listings.AssertExpectations(s.T())
}

func (s *MarketServiceTestSuite) TestListServices_CacheHitSkipsRepositories() {
	cached := []models.ServiceListing{
		{Service: models.Service{Name: "Telegram India"}, Stock: 3},
	}
	s.listings.On("GetListings", s.ctx).Return(cached, nil)

	listings, err := s.service.ListServices(s.ctx)

	s.NoError(err)
	s.Equal(cached, listings)
	s.serviceRepo.AssertNotCalled(s.T(), "FindAll", mock.Anything, mock.Anything)
}

func (s *MarketServiceTestSuite) TestListOrders_DefaultLimit() {
	s.orderRepo.On("FindByUser", s.ctx, "user123", int64(10)).Return([]*models.Order{}, nil)

	_, err := s.service.ListOrders(s.ctx, "user123", 0)

	s.NoError(err)
	s.orderRepo.AssertExpectations(s.T())
}
