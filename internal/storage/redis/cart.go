// Package redis implements the cart store and checkout idempotency records
// on Redis. Carts are short-lived per-user blobs, a natural fit for a TTL
// key-value store rather than relational rows.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wickandwax/storefront/internal/domain/cart"
)

// DefaultCartTTL is how long an untouched cart survives.
const DefaultCartTTL = 7 * 24 * time.Hour

// NewClient parses a Redis URL, connects, and verifies the connection.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository as one JSON blob per user with
// a sliding TTL.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository returns a CartRepository with the given TTL.
// A non-positive ttl falls back to DefaultCartTTL.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	if ttl <= 0 {
		ttl = DefaultCartTTL
	}
	return &CartRepository{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return "cart:user:" + userID
}

// Get returns the user's cart, or (nil, nil) when none exists.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting cart for %q: %w", userID, err)
	}

	var c cart.Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("decoding cart for %q: %w", userID, err)
	}
	return &c, nil
}

// Save writes the cart and refreshes its TTL.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding cart for %q: %w", c.UserID, err)
	}
	if err := r.client.Set(ctx, cartKey(c.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("saving cart for %q: %w", c.UserID, err)
	}
	return nil
}

// Delete removes the user's cart. Deleting an absent cart is a no-op.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("deleting cart for %q: %w", userID, err)
	}
	return nil
}
