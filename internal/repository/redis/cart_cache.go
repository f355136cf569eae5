package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

type cartCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewCartCache creates a CartCache backed by Redis. Entries expire after ttl
// and are invalidated by every cart mutation.
func NewCartCache(client *goredis.Client, ttl time.Duration) repository.CartCache {
	return &cartCache{client: client, ttl: ttl}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (c *cartCache) Get(ctx context.Context, userID string) (*entity.CartView, error) {
	data, err := c.client.Get(ctx, cartKey(userID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart cache: %w", err)
	}

	var view entity.CartView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to decode cached cart: %w", err)
	}
	return &view, nil
}

func (c *cartCache) Set(ctx context.Context, userID string, view *entity.CartView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to encode cart for cache: %w", err)
	}
	if err := c.client.Set(ctx, cartKey(userID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cart cache: %w", err)
	}
	return nil
}

func (c *cartCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cart cache: %w", err)
	}
	return nil
}
