package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pharmacy-storefront/internal/models"

	"github.com/go-redis/redis/v8"
)

const categoriesKey = "catalog:categories"

// CategoryCache keeps the alphabetical category list as JSON with a short TTL
type CategoryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCategoryCache(c *Client, ttl time.Duration) *CategoryCache {
	return &CategoryCache{rdb: c.rdb, ttl: ttl}
}

func (c *CategoryCache) GetCategories(ctx context.Context) ([]models.Category, bool, error) {
	raw, err := c.rdb.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var categories []models.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached categories: %w", err)
	}
	return categories, true, nil
}

func (c *CategoryCache) SetCategories(ctx context.Context, categories []models.Category) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	return c.rdb.Set(ctx, categoriesKey, raw, c.ttl).Err()
}

func (c *CategoryCache) InvalidateCategories(ctx context.Context) error {
	return c.rdb.Del(ctx, categoriesKey).Err()
}
