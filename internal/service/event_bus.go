package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/teleotp/teleotp/internal/models"
	"github.com/teleotp/teleotp/pkg/cache"
	"github.com/teleotp/teleotp/pkg/messaging"
)

const ordersExchange = "orders.events"

// RedisEventBus pushes order events to buyers over Redis Pub/Sub, keyed by
// user id, and mirrors every event onto the orders.events RabbitMQ exchange
// for out-of-process consumers.
type RedisEventBus struct {
	cache  *cache.RedisCache
	mq     *messaging.RabbitMQ
	logger *logrus.Logger
}

func NewRedisEventBus(cache *cache.RedisCache, mq *messaging.RabbitMQ, logger *logrus.Logger) *RedisEventBus {
	return &RedisEventBus{
		cache:  cache,
		mq:     mq,
		logger: logger,
	}
}

func channelForUser(userID string) string {
	return fmt.Sprintf("orders:%s", userID)
}

func (b *RedisEventBus) Publish(ctx context.Context, event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	if b.mq != nil {
		if err := b.mq.Publish(ordersExchange, event.Type, event); err != nil {
			b.logger.Errorf("Failed to publish order event to RabbitMQ: %v", err)
		}
	}

	if err := b.cache.Publish(ctx, channelForUser(event.UserID), data); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	return nil
}

// Subscribe delivers events for one buyer until the returned cancel func is
// called or ctx is done. Events arriving while the subscriber is slow are
// dropped, matching the best-effort contract.
func (b *RedisEventBus) Subscribe(ctx context.Context, userID string) (<-chan models.OrderEvent, func()) {
	pubsub := b.cache.Subscribe(ctx, channelForUser(userID))
	events := make(chan models.OrderEvent, 8)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}

				var event models.OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Errorf("Failed to decode order event: %v", err)
					continue
				}

				select {
				case events <- event:
				default:
					b.logger.Warnf("Dropping order event for slow subscriber %s", userID)
				}
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}

	return events, cancel
}
