package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teleotp/teleotp/internal/models"
)

// OTPService routes incoming OTP codes to orders. Deliver serves the webhook
// path, ManualDeliver the operator override; both perform the same two
// writes: complete the order, then mark the number sold.
type OTPService struct {
	orderRepo  OrderRepository
	numberRepo NumberRepository
	bus        EventBus
	notifier   Notifier
	metrics    MetricsRecorder
	logger     *logrus.Logger
}

func NewOTPService(
	orderRepo OrderRepository,
	numberRepo NumberRepository,
	bus EventBus,
	notifier Notifier,
	metrics MetricsRecorder,
	logger *logrus.Logger,
) *OTPService {
	return &OTPService{
		orderRepo:  orderRepo,
		numberRepo: numberRepo,
		bus:        bus,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Deliver completes the most recently created pending order for the number.
// When several pending orders share the number, only the newest one receives
// the code; calling twice in a row completes two different orders. There is
// no idempotency key.
func (s *OTPService) Deliver(ctx context.Context, phoneNumber, code string) (*models.Order, error) {
	order, err := s.orderRepo.FindLatestPendingByNumber(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up pending order: %w", err)
	}
	if order == nil {
		s.metrics.IncrementOTPUnmatched()
		s.notifier.NotifyUnmatchedOTP(ctx, phoneNumber)
		return nil, models.ErrNoPendingOrder
	}

	if err := s.orderRepo.Complete(ctx, order.ID, code); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	// Fire-and-forget: a failed sold-marking leaves the number purchasable
	// again and is only logged.
	if err := s.numberRepo.MarkSold(ctx, order.PhoneNumberID); err != nil {
		s.logger.Errorf("Failed to mark number %s sold: %v", phoneNumber, err)
	}

	s.metrics.IncrementOTPDelivered("webhook")
	s.metrics.RecordDeliveryLatency(time.Since(order.CreatedAt).Seconds())

	s.completeLocally(order, code)
	s.publishCompleted(ctx, order)

	s.logger.Infof("OTP %s delivered for number %s, order %s", code, phoneNumber, order.OrderID)

	return order, nil
}

// ManualDeliver is the operator override: the order is already known, so
// there is no secret check and no phone-number lookup. A completed order can
// be overridden again; the last write wins.
func (s *OTPService) ManualDeliver(ctx context.Context, orderID, code string) (*models.Order, error) {
	order, err := s.orderRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}
	if order == nil {
		return nil, models.ErrOrderNotFound
	}

	if err := s.orderRepo.Complete(ctx, order.ID, code); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	// The override only has the denormalized number string, so sold-marking
	// matches on it rather than on the number id.
	if err := s.numberRepo.MarkSoldByNumber(ctx, order.PhoneNumber); err != nil {
		s.logger.Errorf("Failed to mark number %s sold: %v", order.PhoneNumber, err)
	}

	s.metrics.IncrementOTPDelivered("manual")

	s.completeLocally(order, code)
	s.publishCompleted(ctx, order)

	s.logger.Infof("Operator delivered OTP for order %s", order.OrderID)

	return order, nil
}

func (s *OTPService) completeLocally(order *models.Order, code string) {
	now := time.Now()
	order.OTP = code
	order.Status = models.OrderStatusCompleted
	order.CompletedAt = &now
}

func (s *OTPService) publishCompleted(ctx context.Context, order *models.Order) {
	event := models.OrderEvent{
		Type:        models.EventOrderCompleted,
		OrderID:     order.OrderID,
		UserID:      order.UserID,
		PhoneNumber: order.PhoneNumber,
		OTP:         order.OTP,
		Status:      order.Status,
		Timestamp:   time.Now(),
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Errorf("Failed to publish order completed event: %v", err)
	}
}
