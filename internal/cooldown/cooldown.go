package cooldown

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger records "user was recently reminded" markers so that abandonment
// reminders are not sent twice within the cooldown window. Markers expire on
// their own; the ledger is shared across actors and may fail independently of
// actor persistence.
type Ledger interface {
	Mark(ctx context.Context, userID string) error
	Active(ctx context.Context, userID string) (bool, error)
}

type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLedger(client *redis.Client, ttl time.Duration) *RedisLedger {
	return &RedisLedger{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisLedger) Mark(ctx context.Context, userID string) error {
	key := markerKey(userID)
	if err := r.client.Set(ctx, key, "1", r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisLedger) Active(ctx context.Context, userID string) (bool, error) {
	key := markerKey(userID)

	err := r.client.Get(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	return true, nil
}

func markerKey(userID string) string {
	return fmt.Sprintf("cart-reminder-cooldown:%s", userID)
}
