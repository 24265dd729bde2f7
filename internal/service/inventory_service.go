package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/teleotp/teleotp/internal/models"
)

const adminOrderLimit = 50

// InventoryService implements the operator side: the service catalog and the
// number inventory under it.
type InventoryService struct {
	serviceRepo ServiceRepository
	numberRepo  NumberRepository
	orderRepo   OrderRepository
	listings    ListingCache
	logger      *logrus.Logger
}

func NewInventoryService(
	serviceRepo ServiceRepository,
	numberRepo NumberRepository,
	orderRepo OrderRepository,
	listings ListingCache,
	logger *logrus.Logger,
) *InventoryService {
	return &InventoryService{
		serviceRepo: serviceRepo,
		numberRepo:  numberRepo,
		orderRepo:   orderRepo,
		listings:    listings,
		logger:      logger,
	}
}

// AddService creates a catalog entry. The price arrives as free text from the
// operator form; an unparseable value silently becomes 0.
func (s *InventoryService) AddService(ctx context.Context, name, priceText string) (*models.Service, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(priceText), 64)
	if err != nil {
		price = 0
	}

	svc := &models.Service{
		Name:     strings.TrimSpace(name),
		Price:    price,
		IsActive: true,
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)

	s.logger.Infof("Service %q added with price %.2f", svc.Name, svc.Price)

	return svc, nil
}

// AddNumbers bulk-inserts numbers from newline-separated text. Every
// non-empty line becomes one unsold row under the service.
func (s *InventoryService) AddNumbers(ctx context.Context, serviceID, text string) (int, error) {
	svcID, err := primitive.ObjectIDFromHex(serviceID)
	if err != nil {
		return 0, models.ErrServiceNotFound
	}

	svc, err := s.serviceRepo.FindByID(ctx, svcID)
	if err != nil {
		return 0, err
	}
	if svc == nil {
		return 0, models.ErrServiceNotFound
	}

	var numbers []*models.PhoneNumber
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		numbers = append(numbers, &models.PhoneNumber{
			ServiceID: svcID,
			Number:    line,
			IsSold:    false,
		})
	}

	if len(numbers) == 0 {
		return 0, nil
	}

	if err := s.numberRepo.InsertMany(ctx, numbers); err != nil {
		return 0, err
	}

	s.invalidateListings(ctx)

	s.logger.Infof("%d numbers added to service %q", len(numbers), svc.Name)

	return len(numbers), nil
}

// DeleteNumber removes an unsold number. Sold numbers cannot be deleted.
func (s *InventoryService) DeleteNumber(ctx context.Context, numberID string) error {
	id, err := primitive.ObjectIDFromHex(numberID)
	if err != nil {
		return models.ErrNumberNotFound
	}

	if err := s.numberRepo.DeleteUnsold(ctx, id); err != nil {
		return err
	}

	s.invalidateListings(ctx)

	return nil
}

// ListServicesWithNumbers is the operator view: every service with its full
// number inventory, sold and unsold.
func (s *InventoryService) ListServicesWithNumbers(ctx context.Context) ([]ServiceInventory, error) {
	services, err := s.serviceRepo.FindAll(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]ServiceInventory, 0, len(services))
	for _, svc := range services {
		numbers, err := s.numberRepo.FindByService(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ServiceInventory{Service: *svc, Numbers: numbers})
	}

	return out, nil
}

func (s *InventoryService) ListRecentOrders(ctx context.Context, limit int64) ([]*models.Order, error) {
	if limit <= 0 {
		limit = adminOrderLimit
	}
	return s.orderRepo.FindRecent(ctx, limit)
}

func (s *InventoryService) invalidateListings(ctx context.Context) {
	if s.listings == nil {
		return
	}
	if err := s.listings.Invalidate(ctx); err != nil {
		s.logger.Errorf("Failed to invalidate listings cache: %v", err)
	}
}

type ServiceInventory struct {
	models.Service `bson:",inline"`
	Numbers        []*models.PhoneNumber `json:"numbers"`
}
