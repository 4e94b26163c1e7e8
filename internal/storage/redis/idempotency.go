package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wickandwax/storefront/internal/domain/order"
)

var _ order.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore records which order a checkout idempotency key produced.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore returns an IdempotencyStore on the given client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

func idemKey(key string) string {
	return "idem:order:" + key
}

// reservedMarker occupies the key between Reserve and Set. Order ids are
// UUIDs, so the marker cannot collide with a recorded value.
const reservedMarker = "reserved"

// Reserve claims the key with SETNX so only one in-flight checkout can
// hold it.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, idemKey(key), reservedMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserving idempotency key: %w", err)
	}
	return ok, nil
}

// Get returns the order id recorded for the key, or "" when the key is
// unseen or still reserved.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, idemKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting idempotency key: %w", err)
	}
	if val == reservedMarker {
		return "", nil
	}
	return val, nil
}

// Set records the order created under the key for the given TTL, replacing
// any reservation.
func (s *IdempotencyStore) Set(ctx context.Context, key, orderID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, idemKey(key), orderID, ttl).Err(); err != nil {
		return fmt.Errorf("setting idempotency key: %w", err)
	}
	return nil
}

// Release drops the key so a failed checkout can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idemKey(key)).Err(); err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}
	return nil
}
