// Package rediscache keeps read-through copies of catalog entries in Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const keyPrefix = "minimarket:product:"

type ProductCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewProductCache(client redis.Cmdable, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{client: client, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

type cachedProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImagePath   string          `json:"imagePath"`
	Available   bool            `json:"available"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func encode(p *product.Product) ([]byte, error) {
	return json.Marshal(cachedProduct{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImagePath:   p.ImagePath,
		Available:   p.Available,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
}

// Get reports a miss as (nil, false, nil).
func (c *ProductCache) Get(ctx context.Context, id string) (*product.Product, bool, error) {
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rediscache: get %s: %w", id, err)
	}
	var cp cachedProduct
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, false, fmt.Errorf("rediscache: decode %s: %w", id, err)
	}
	return &product.Product{
		ID:          cp.ID,
		Name:        cp.Name,
		Category:    cp.Category,
		Description: cp.Description,
		Price:       cp.Price,
		Stock:       cp.Stock,
		ImagePath:   cp.ImagePath,
		Available:   cp.Available,
		CreatedAt:   cp.CreatedAt,
		UpdatedAt:   cp.UpdatedAt,
	}, true, nil
}

func (c *ProductCache) Set(ctx context.Context, p *product.Product) error {
	payload, err := encode(p)
	if err != nil {
		return fmt.Errorf("rediscache: encode %s: %w", p.ID, err)
	}
	if err := c.client.Set(ctx, key(p.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("rediscache: set %s: %w", p.ID, err)
	}
	return nil
}

func (c *ProductCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("rediscache: del %s: %w", id, err)
	}
	return nil
}
