package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/identity-sync-service/pkg/database"
)

// DeliveryLedger remembers processed webhook deliveries in Redis so redeliveries
// of the same message id are acknowledged without being applied again
type DeliveryLedger struct {
	redis *database.Redis
	ttl   time.Duration
}

// NewDeliveryLedger creates a new delivery ledger
func NewDeliveryLedger(redis *database.Redis, ttl time.Duration) *DeliveryLedger {
	return &DeliveryLedger{redis: redis, ttl: ttl}
}

// IsProcessed checks if a delivery was already applied
func (l *DeliveryLedger) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	exists, err := l.redis.Client.Exists(ctx, deliveryKey(deliveryID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check delivery ledger: %w", err)
	}
	return exists > 0, nil
}

// MarkProcessed records a delivery as applied
func (l *DeliveryLedger) MarkProcessed(ctx context.Context, deliveryID string) error {
	if err := l.redis.Client.Set(ctx, deliveryKey(deliveryID), "1", l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	return nil
}

func deliveryKey(deliveryID string) string {
	return fmt.Sprintf("webhook:delivery:%s", deliveryID)
}
