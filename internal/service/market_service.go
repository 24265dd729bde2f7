package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teleotp/teleotp/internal/models"
)

const (
	listingsTTL       = 30 * time.Second
	defaultOrderLimit = 10
)

// MarketService implements the buyer side: browsing the catalog and
// purchasing numbers.
type MarketService struct {
	serviceRepo ServiceRepository
	numberRepo  NumberRepository
	orderRepo   OrderRepository
	listings    ListingCache
	bus         EventBus
	notifier    Notifier
	metrics     MetricsRecorder
	logger      *logrus.Logger
}

func NewMarketService(
	serviceRepo ServiceRepository,
	numberRepo NumberRepository,
	orderRepo OrderRepository,
	listings ListingCache,
	bus EventBus,
	notifier Notifier,
	metrics MetricsRecorder,
	logger *logrus.Logger,
) *MarketService {
	return &MarketService{
		serviceRepo: serviceRepo,
		numberRepo:  numberRepo,
		orderRepo:   orderRepo,
		listings:    listings,
		bus:         bus,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
	}
}

func (s *MarketService) ListServices(ctx context.Context) ([]models.ServiceListing, error) {
	if s.listings != nil {
		if cached, err := s.listings.GetListings(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	services, err := s.serviceRepo.FindAll(ctx, true)
	if err != nil {
		return nil, err
	}

	listings := make([]models.ServiceListing, 0, len(services))
	for _, svc := range services {
		stock, err := s.numberRepo.CountAvailable(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, models.ServiceListing{Service: *svc, Stock: stock})
	}

	if s.listings != nil {
		if err := s.listings.SetListings(ctx, listings, listingsTTL); err != nil {
			s.logger.Errorf("Failed to cache service listings: %v", err)
		}
	}

	return listings, nil
}

// Purchase reserves nothing: it picks any unsold number under the service and
// creates a pending order referencing it. The number is marked sold only when
// an OTP is delivered, so concurrent buyers can be handed the same number.
func (s *MarketService) Purchase(ctx context.Context, userID, serviceID string) (*models.Order, error) {
	svcID, err := primitive.ObjectIDFromHex(serviceID)
	if err != nil {
		return nil, models.ErrServiceNotFound
	}

	svc, err := s.serviceRepo.FindByID(ctx, svcID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, models.ErrServiceNotFound
	}
	if !svc.IsActive {
		return nil, models.ErrServiceInactive
	}

	number, err := s.numberRepo.FindAvailable(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	if number == nil {
		s.metrics.IncrementPurchaseFailed(svc.Name, "no_stock")
		s.notifier.NotifyOutOfStock(ctx, svc.Name)
		return nil, models.ErrNoStock
	}

	order := &models.Order{
		OrderID:       uuid.New().String(),
		UserID:        userID,
		ServiceID:     svc.ID,
		PhoneNumberID: number.ID,
		PhoneNumber:   number.Number,
		Status:        models.OrderStatusPending,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.metrics.IncrementPurchaseFailed(svc.Name, "db_error")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	event := models.OrderEvent{
		Type:        models.EventOrderCreated,
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		PhoneNumber: order.PhoneNumber,
		Status:      order.Status,
		Timestamp:   time.Now(),
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Errorf("Failed to publish order created event: %v", err)
	}

	s.metrics.IncrementPurchaseSuccess(svc.Name)

	s.logger.Infof("User %s purchased number %s, order %s", userID, number.Number, order.OrderID)

	return order, nil
}

func (s *MarketService) ListOrders(ctx context.Context, userID string, limit int64) ([]*models.Order, error) {
	if limit <= 0 {
		limit = defaultOrderLimit
	}
	return s.orderRepo.FindByUser(ctx, userID, limit)
}
